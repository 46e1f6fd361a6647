// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli assembles the varres command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/varres/varres/internal/config"
	"github.com/varres/varres/internal/logging"
)

// flagMappings routes explicitly-set root flags into config keys.
var flagMappings = map[string]string{
	"profile":    "profile",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// runtime carries the loaded configuration and logger to subcommands.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd assembles the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "varres",
		Short:         "Conditional resource resolution engine",
		Long:          "varres compiles conditional resource declarations into checksum-sealed bundles and resolves them against runtime contexts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader()
			if err := loader.Load(configPath); err != nil {
				return err
			}
			if err := loader.LoadFlags(cmd.Root().PersistentFlags(), flagMappings); err != nil {
				return err
			}
			cfg, err := loader.Config()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = logging.New(cfg.Logging)
			cmd.SetContext(logging.NewContext(cmd.Context(), rt.logger))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a varres config file")
	flags.String("profile", "", "system configuration profile")
	flags.String("log-level", "", "minimum log level (debug, info, warn, error)")
	flags.String("log-format", "", "log output format (json, text)")

	rootCmd.AddCommand(
		newBuildCmd(rt),
		newResolveCmd(rt),
		newInspectCmd(rt),
	)
	return rootCmd
}
