package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the safety cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached safety data, including the shared Redis cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(false)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.ClearCache(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Safety cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
