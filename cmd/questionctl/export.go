package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all questions as JSON",
		Long: `Export writes every question as a JSON array that import accepts.
Without --output the array goes to standard output.`,
		Example: "  questionctl export -o backup.json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				_, err := a.imports.ExportToWriter(cmd.Context(), cmd.OutOrStdout())
				return err
			}

			n, err := a.imports.Export(cmd.Context(), output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d questions to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: standard output)")
	return cmd
}
