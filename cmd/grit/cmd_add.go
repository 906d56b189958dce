package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path|dir|pattern>...",
		Short: "Stage files for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			staged, missing, err := r.Add(args)
			if err != nil {
				return err
			}
			for _, spec := range missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: pathspec %q did not match any files\n", spec)
			}
			log.Debugf("staged %d file(s)", len(staged))
			return nil
		},
	}
}
