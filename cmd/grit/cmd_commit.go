package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var messages []string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes to the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			message := strings.Join(messages, "\n\n")
			h, err := r.Commit(message)
			if err != nil {
				return err
			}

			branch, err := r.CurrentBranch()
			if err != nil || branch == "" {
				branch = "HEAD"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, shortHash(string(h)), subjectLine(message))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&messages, "message", "m", nil, "commit message (repeatable; paragraphs joined by blank lines)")
	cmd.MarkFlagRequired("message")

	return cmd
}
