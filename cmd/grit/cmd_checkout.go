package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	var createBranch bool

	cmd := &cobra.Command{
		Use:   "checkout <branch|commit>",
		Short: "Switch branches or detach onto a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if createBranch {
				if err := r.CheckoutNewBranch(target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "switched to new branch '%s'\n", target)
				return nil
			}

			if err := r.Checkout(target); err != nil {
				return err
			}

			head, err := r.Head()
			if err != nil {
				return err
			}
			if head.Detached() {
				fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s\n", shortHash(string(head.Commit)))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "switched to branch '%s'\n", target)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&createBranch, "branch", "b", false, "create the branch at the current commit and switch to it")

	return cmd
}
