package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clawkit/internal/infra/config"
)

func initCmd(cfgPath *string) *cobra.Command {
	var (
		force   bool
		backend string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file to --config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(*cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", *cfgPath)
			}

			cfg := config.Defaults()
			switch backend {
			case "":
			case "sqlite":
				cfg.Store.Backend = backend
				cfg.Store.Path = filepath.Join(filepath.Dir(cfg.Store.Path), "setup.db")
			default:
				cfg.Store.Backend = backend
			}
			if err := config.Save(cfg, *cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", *cfgPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&backend, "store", "", "store backend: console, file or sqlite")
	return cmd
}
