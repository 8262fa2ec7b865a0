package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/safety/pipeline"
)

var (
	scanLang   string
	outputJSON bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Scan a label photo and print the safety report",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>...",
	Short: "Look up safety data for ingredient names",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	scanCmd.Flags().StringVar(&scanLang, "lang", "", "label language hint (overrides ocr.language_hint)")
	scanCmd.Flags().BoolVar(&outputJSON, "json", false, "print the result as JSON")
	resolveCmd.Flags().BoolVar(&outputJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(scanCmd, resolveCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	app, err := newApp(true)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := app.ProcessImage(ctx, image, pipeline.Options{LanguageHint: scanLang})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), domain.UserMessage(err))
		return err
	}

	if outputJSON {
		return writeJSON(cmd, result)
	}
	return printScan(cmd.OutOrStdout(), result)
}

func runResolve(cmd *cobra.Command, args []string) error {
	app, err := newApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := app.ResolveBatch(ctx, args)
	if outputJSON {
		return writeJSON(cmd, results)
	}
	return printResolve(cmd.OutOrStdout(), args, results)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
