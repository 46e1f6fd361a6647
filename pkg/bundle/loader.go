// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/json"
	"fmt"

	"github.com/varres/varres/pkg/normalize"
	"github.com/varres/varres/pkg/qualifier"
	"github.com/varres/varres/pkg/res"
)

// LoadOptions configures bundle loading.
type LoadOptions struct {
	// SkipChecksumVerification disables the integrity check. Intended for
	// tooling that inspects damaged bundles; never for production loads.
	SkipChecksumVerification bool
	// Registry resolves qualifier system types; nil selects the built-in
	// registry.
	Registry *qualifier.Registry
}

// Load parses, verifies and rehydrates a bundle into a read-only manager.
func Load(data []byte, opts LoadOptions) (*res.Manager, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bundle: parse: %w", err)
	}
	return LoadBundle(&b, opts)
}

// LoadBundle verifies and rehydrates an already-parsed bundle.
func LoadBundle(b *Bundle, opts LoadOptions) (*res.Manager, error) {
	if b.CompiledCollection == nil {
		return nil, fmt.Errorf("bundle: missing compiled collection")
	}

	normalizer, err := normalizerByName(b.Metadata.Normalizer)
	if err != nil {
		return nil, err
	}

	if !opts.SkipChecksumVerification {
		checksum, err := normalizer.Key(b.CompiledCollection)
		if err != nil {
			return nil, fmt.Errorf("bundle: checksum: %w", err)
		}
		if checksum != b.Metadata.Checksum {
			return nil, fmt.Errorf("%w: checksum %s does not match compiled collection (%s)",
				ErrIntegrity, b.Metadata.Checksum, checksum)
		}
	}

	if err := verifyConfig(b); err != nil {
		return nil, err
	}

	m, err := res.NewManagerFromCompiled(b.CompiledCollection, opts.Registry, normalizer)
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	return m, nil
}

// normalizerByName maps a recorded normalizer name to an implementation.
// An empty name selects the default for compatibility with older bundles.
func normalizerByName(name string) (normalize.Normalizer, error) {
	switch name {
	case "", "crc32":
		return normalize.NewCrc32Normalizer(), nil
	default:
		return nil, fmt.Errorf("bundle: unknown normalizer %q", name)
	}
}

// verifyConfig checks that the bundle's config section agrees with the
// configuration embedded in the compiled collection.
func verifyConfig(b *Bundle) error {
	embedded := res.SystemConfigurationDecl{
		QualifierTypes: b.CompiledCollection.QualifierTypes,
		Qualifiers:     b.CompiledCollection.Qualifiers,
		ResourceTypes:  b.CompiledCollection.ResourceTypes,
	}
	equal, err := normalize.Equal(b.Config, embedded)
	if err != nil {
		return fmt.Errorf("bundle: %w", err)
	}
	if !equal {
		return fmt.Errorf("%w: config does not match compiled collection", ErrIntegrity)
	}
	return nil
}
