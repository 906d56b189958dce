package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			entries, err := r.Log("", limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}

			head, err := r.Head()
			if err != nil {
				return err
			}

			for _, entry := range entries {
				decoration := ""
				if entry.Hash == head.Commit {
					if head.Branch != "" {
						decoration = " (HEAD -> " + head.Branch + ")"
					} else {
						decoration = " (HEAD)"
					}
				}

				c := entry.Commit
				if oneline {
					fmt.Fprintf(out, "%s%s %s\n", shortHash(string(entry.Hash)), decoration, subjectLine(c.Message))
					continue
				}

				fmt.Fprintf(out, "commit %s%s\n", entry.Hash, decoration)
				fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Fprintf(out, "Date:   %s %s\n", time.Unix(c.Author.Unix, 0).Format("2006-01-02 15:04:05"), c.Author.TZ)
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of commits to show")

	return cmd
}
