package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			entries, err := r.Status()
			if err != nil {
				return err
			}
			head, err := r.Head()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case head.Detached():
				fmt.Fprintf(out, "HEAD detached at %s\n", shortHash(string(head.Commit)))
			case head.Unborn():
				fmt.Fprintf(out, "on %s (no commits yet)\n", head.Branch)
			default:
				fmt.Fprintf(out, "on %s\n", head.Branch)
			}

			var staged, unstaged, untracked []string
			for _, e := range entries {
				switch e.Status {
				case repo.StatusNew:
					staged = append(staged, "  + "+e.Path)
				case repo.StatusModified:
					staged = append(staged, "  ~ "+e.Path)
				case repo.StatusDeleted:
					staged = append(staged, "  - "+e.Path)
				case repo.StatusDirty:
					unstaged = append(unstaged, "  ~ "+e.Path)
				case repo.StatusMissing:
					unstaged = append(unstaged, "  - "+e.Path)
				case repo.StatusUntracked:
					untracked = append(untracked, "  "+e.Path)
				}
			}

			printBucket(out, "staged:", staged)
			printBucket(out, "unstaged:", unstaged)
			printBucket(out, "untracked:", untracked)
			if len(staged) == 0 && len(unstaged) == 0 && len(untracked) == 0 {
				fmt.Fprintln(out, "working tree clean")
			}
			return nil
		},
	}
}

func printBucket(out io.Writer, header string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, header)
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}
