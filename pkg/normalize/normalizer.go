// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"fmt"
	"hash/crc32"
)

// Normalizer turns a JSON-compatible value into canonical bytes and a content
// key derived from them. Two values share a key iff they share a canonical
// encoding.
type Normalizer interface {
	// Name identifies the normalizer in bundle metadata.
	Name() string
	// Normalize returns the canonical encoding of v.
	Normalize(v any) ([]byte, error)
	// Key returns the content key for v as a lowercase hex string.
	Key(v any) (string, error)
}

// Crc32Normalizer is the default Normalizer: canonical JSON hashed with
// CRC32 (IEEE), rendered as 8 lowercase hex digits.
type Crc32Normalizer struct{}

// NewCrc32Normalizer returns the default normalizer.
func NewCrc32Normalizer() Crc32Normalizer {
	return Crc32Normalizer{}
}

func (Crc32Normalizer) Name() string {
	return "crc32"
}

func (Crc32Normalizer) Normalize(v any) ([]byte, error) {
	return CanonicalJSON(v)
}

func (Crc32Normalizer) Key(v any) (string, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data)), nil
}

// KeyOfString hashes a raw string token without JSON encoding. Collectors use
// it for keys built from joined canonical tokens rather than JSON values.
func KeyOfString(s string) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(s)))
}
