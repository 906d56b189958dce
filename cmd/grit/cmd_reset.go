package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [revision]",
		Short: "Move HEAD to a revision and clear the index",
		Long:  "Moves the current branch (or detached HEAD) to the given revision, such as HEAD~2, and clears the staging index. Worktree files are left untouched.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev := "HEAD"
			if len(args) > 0 {
				rev = args[0]
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			h, err := r.ResetHead(rev)
			if err != nil {
				return err
			}
			c, err := r.Store.ReadCommit(h)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s %s\n", shortHash(string(h)), subjectLine(c.Message))
			return nil
		},
	}
}
