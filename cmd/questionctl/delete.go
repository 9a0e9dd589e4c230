package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	var (
		course string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:     "delete",
		Short:   "Delete every question of a course",
		Example: `  questionctl delete --course "Compute Fundamentals" --yes`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			course = strings.TrimSpace(course)
			if course == "" {
				return fmt.Errorf("--course must not be blank")
			}

			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "Delete every question in course %q? (y/N): ", course)
				input, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				input = strings.TrimSpace(strings.ToLower(input))
				if input != "y" && input != "yes" {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			n, err := a.imports.DeleteCourse(cmd.Context(), course)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %d questions from course %q\n", n, course)
			return nil
		},
	}

	cmd.Flags().StringVarP(&course, "course", "c", "", "course label to delete (required)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	cmd.MarkFlagRequired("course")
	return cmd
}
