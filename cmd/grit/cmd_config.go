package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get or set repository configuration",
		Long:  "Reads or writes config.toml keys. Settable: user.name, user.email. Readable: those plus core.hash and core.branch.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			cfg, err := r.Config()
			if err != nil {
				return err
			}

			key := args[0]
			if len(args) == 1 {
				var value string
				switch key {
				case "user.name":
					value = cfg.User.Name
				case "user.email":
					value = cfg.User.Email
				case "core.hash":
					value = cfg.Core.Hash
				case "core.branch":
					value = cfg.Core.Branch
				default:
					return fmt.Errorf("unknown config key %q", key)
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}

			value := args[1]
			switch key {
			case "user.name":
				return r.SetUser(value, cfg.User.Email)
			case "user.email":
				return r.SetUser(cfg.User.Name, value)
			}
			return fmt.Errorf("config key %q is not settable", key)
		},
	}
}
