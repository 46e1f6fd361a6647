// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/varres/varres/pkg/bundle"
	"github.com/varres/varres/pkg/res"
)

func newResolveCmd(rt *runtime) *cobra.Command {
	var (
		contextToken string
		skipVerify   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <bundle.json> <resource-id>",
		Short: "Resolve a resource from a bundle against a context",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			manager, err := bundle.Load(raw, bundle.LoadOptions{SkipChecksumVerification: skipVerify})
			if err != nil {
				return err
			}

			ctx, err := res.ParseContextToken(manager.Configuration(), contextToken)
			if err != nil {
				return err
			}
			value, err := manager.Resolve(args[1], ctx)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextToken, "context", "c", "", `context token, e.g. "language=en|currentTerritory=US"`)
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "skip bundle checksum verification")
	return cmd
}
