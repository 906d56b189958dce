package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var hashName string
	var branch string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty grit repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			opts := repo.InitOptions{Branch: branch}
			if hashName != "" {
				alg, err := object.ParseAlgorithm(hashName)
				if err != nil {
					return err
				}
				opts.Algorithm = alg
			}

			r, err := repo.InitWith(abs, opts)
			if err != nil {
				return err
			}
			log.Debugf("objects keyed by %s", r.Store.Algorithm())

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty repository in %s\n", r.GritDir+string(filepath.Separator))
			return nil
		},
	}

	cmd.Flags().StringVar(&hashName, "hash", "", "object id algorithm: sha1 or sha256 (default sha1)")
	cmd.Flags().StringVar(&branch, "branch", "", "initial branch name (default main)")

	return cmd
}
