// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/varres/varres/pkg/res"
)

// BuildOptions configures bundle sealing.
type BuildOptions struct {
	// Normalize re-orders every compiled array into canonical-key order so
	// the checksum is independent of declaration order.
	Normalize bool
	// Version and Description are recorded verbatim in the metadata.
	Version     string
	Description string
	// Now overrides the build instant, for reproducible output. The zero
	// value means the current time.
	Now time.Time
}

// Build seals a compiled manager into a bundle. The checksum is the content
// key of the compiled collection under the manager's normalizer.
func Build(m *res.Manager, opts BuildOptions) (*Bundle, error) {
	var compiled *res.CompiledCollection
	var err error
	if opts.Normalize {
		compiled, err = m.NormalizedCompiled()
	} else {
		compiled, err = m.Compiled()
	}
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}

	normalizer := m.Normalizer()
	checksum, err := normalizer.Key(compiled)
	if err != nil {
		return nil, fmt.Errorf("bundle: checksum: %w", err)
	}

	builtAt := opts.Now
	if builtAt.IsZero() {
		builtAt = time.Now()
	}

	return &Bundle{
		Metadata: Metadata{
			DateBuilt:   builtAt.UTC().Format(time.RFC3339),
			Checksum:    checksum,
			Normalizer:  normalizer.Name(),
			Version:     opts.Version,
			Description: opts.Description,
		},
		Config:             m.Configuration().Decl(),
		CompiledCollection: compiled,
	}, nil
}

// Encode renders the bundle as indented JSON.
func Encode(b *Bundle) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bundle: encode: %w", err)
	}
	return data, nil
}
