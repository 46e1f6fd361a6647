// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/varres/varres/pkg/bundle"
)

func newInspectCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <bundle.json>",
		Short: "Print bundle metadata, verification status and entity counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var parsed bundle.Bundle
			if err := json.Unmarshal(raw, &parsed); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dateBuilt:   %s\n", parsed.Metadata.DateBuilt)
			fmt.Fprintf(out, "checksum:    %s\n", parsed.Metadata.Checksum)
			fmt.Fprintf(out, "normalizer:  %s\n", parsed.Metadata.Normalizer)
			if parsed.Metadata.Version != "" {
				fmt.Fprintf(out, "version:     %s\n", parsed.Metadata.Version)
			}
			if parsed.Metadata.Description != "" {
				fmt.Fprintf(out, "description: %s\n", parsed.Metadata.Description)
			}

			manager, err := bundle.LoadBundle(&parsed, bundle.LoadOptions{})
			switch {
			case errors.Is(err, bundle.ErrIntegrity):
				fmt.Fprintf(out, "integrity:   FAILED\n")
				return err
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "integrity:   ok\n")
			}

			counts := manager.Counts()
			for _, kind := range []string{"resources", "decisions", "conditionSets", "conditions", "candidateValues"} {
				fmt.Fprintf(out, "%-12s %d\n", kind+":", counts[kind])
			}
			return nil
		},
	}
	return cmd
}
