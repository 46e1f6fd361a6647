// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle serializes compiled resource collections into portable,
// checksum-sealed bundles and verifies them on load.
package bundle

import (
	"errors"

	"github.com/varres/varres/pkg/res"
)

// ErrIntegrity marks a bundle whose checksum does not cover its compiled
// collection, or whose config disagrees with the collection.
var ErrIntegrity = errors.New("integrity verification failed")

// Metadata describes a sealed bundle.
type Metadata struct {
	// DateBuilt is the build instant in RFC 3339 UTC.
	DateBuilt string `json:"dateBuilt"`
	// Checksum is the content key of the compiled collection under the
	// named normalizer.
	Checksum string `json:"checksum"`
	// Normalizer names the normalizer that produced the checksum.
	Normalizer  string `json:"normalizer"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Bundle is the portable wire form: metadata, the system configuration and
// the compiled collection. Bundles are immutable once sealed.
type Bundle struct {
	Metadata           Metadata                    `json:"metadata"`
	Config             res.SystemConfigurationDecl `json:"config"`
	CompiledCollection *res.CompiledCollection     `json:"compiledCollection"`
}
