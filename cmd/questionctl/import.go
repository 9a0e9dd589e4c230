package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from a JSON file",
		Long: `Import reads a JSON array of question records. Every record needs
path, course, courseOrder, module, moduleOrder, question and a non-empty
answers object. All records are checked first; if any is invalid each
problem is reported and nothing is written.`,
		Example: "  questionctl import -f questions.json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.imports.Import(cmd.Context(), file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintf(out, "Added question %s\n", id)
			}
			fmt.Fprintf(out, "Imported %d questions\n", len(ids))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file of question records (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}
