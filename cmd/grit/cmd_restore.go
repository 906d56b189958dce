package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newRestoreCmd() *cobra.Command {
	var staged bool

	cmd := &cobra.Command{
		Use:   "restore --staged <path|pattern>...",
		Short: "Unstage entries from the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !staged {
				return fmt.Errorf("restore requires --staged; worktree restore is not supported")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			removed, missing, err := r.Unstage(args)
			if err != nil {
				return err
			}
			for _, spec := range missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: pathspec %q matched no staged files\n", spec)
			}
			log.Debugf("unstaged %d file(s)", len(removed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&staged, "staged", false, "remove the matched entries from the index")

	return cmd
}
