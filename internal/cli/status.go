package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taj0207/IngredientCheck/internal/infra/ocr"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured providers and their health",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	report := app.Health(context.Background())

	keys := make([]string, 0, len(report.Components))
	for k := range report.Components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tKIND\tSTATUS\tAVAILABLE\tDETAIL")
	for _, k := range keys {
		c := report.Components[k]
		detail := c.Error
		if detail == "" && c.Provider != nil {
			detail = c.Provider.Status.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", c.Name, c.Kind, c.Status, c.Available, detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nSystem: %s\n", report.SystemStatus)
	fmt.Printf("OCR engines: %v\n", ocr.Engines())
	fmt.Printf("Regulated substances: %d\n", app.Registry().Len())
	return nil
}
