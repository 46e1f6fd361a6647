// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/varres/varres/internal/logging"
	"github.com/varres/varres/pkg/bundle"
	"github.com/varres/varres/pkg/res"
)

func newBuildCmd(rt *runtime) *cobra.Command {
	var (
		output      string
		version     string
		description string
	)

	cmd := &cobra.Command{
		Use:   "build <declarations.yaml> [more.yaml...]",
		Short: "Compile declarative resources into a sealed bundle",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromContext(cmd.Context())
			cfg, err := res.NewProfile(rt.cfg.Profile, nil, rt.cfg.QualifierDefaults)
			if err != nil {
				return err
			}
			builder := res.NewBuilder(cfg)

			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				var collection res.DeclarativeCollection
				if err := sigsyaml.UnmarshalStrict(raw, &collection); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := builder.AddDeclarative(collection); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				logger.Debug("ingested declarations", "path", path)
			}

			manager, err := builder.Compile()
			if err != nil {
				return err
			}

			opts := bundle.BuildOptions{
				Normalize:   rt.cfg.Bundle.Normalize,
				Version:     version,
				Description: description,
			}
			if opts.Version == "" {
				opts.Version = rt.cfg.Bundle.Version
			}
			if opts.Description == "" {
				opts.Description = rt.cfg.Bundle.Description
			}

			sealed, err := bundle.Build(manager, opts)
			if err != nil {
				return err
			}
			data, err := bundle.Encode(sealed)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			counts := manager.Counts()
			logger.Info("bundle sealed",
				"path", output,
				"checksum", sealed.Metadata.Checksum,
				"resources", counts["resources"],
				"decisions", counts["decisions"],
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "bundle output path (default stdout)")
	cmd.Flags().StringVar(&version, "version", "", "bundle version string")
	cmd.Flags().StringVar(&description, "description", "", "bundle description")
	return cmd
}
