package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat-file <type> <id>",
		Short: "Print the content of a stored object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id := args[0], object.Hash(args[1])

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if !r.Store.Algorithm().ValidHex(string(id)) {
				return fmt.Errorf("invalid object id %q: want %d hex characters", id, r.Store.Algorithm().HexLen())
			}

			out := cmd.OutOrStdout()
			switch kind {
			case "blob":
				b, err := r.Store.ReadBlob(id)
				if err != nil {
					return err
				}
				out.Write(b.Data)
			case "tree":
				tr, err := r.Store.ReadTree(id)
				if err != nil {
					return err
				}
				for _, e := range tr.Entries {
					entryKind := "blob"
					if e.Mode.IsDir() {
						entryKind = "tree"
					}
					fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, entryKind, e.Hash, e.Name)
				}
			case "commit":
				c, err := r.Store.ReadCommit(id)
				if err != nil {
					return err
				}
				out.Write(object.MarshalCommit(c))
			default:
				return fmt.Errorf("unknown object type %q: want blob, tree, or commit", kind)
			}
			return nil
		},
	}
}
