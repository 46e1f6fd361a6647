// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"

	"github.com/varres/varres/pkg/normalize"
)

// CandidateValue is an interned JSON payload, deduplicated across the whole
// corpus by its canonical encoding.
type CandidateValue struct {
	index Index
	key   Key
	// canonical holds the canonical JSON encoding the key was derived from.
	canonical string
	// Value is the JSON-compatible payload tree.
	Value any
}

// newCandidateValue normalizes and keys a JSON payload with the given
// normalizer.
func newCandidateValue(value any, n normalize.Normalizer) (*CandidateValue, error) {
	data, err := n.Normalize(value)
	if err != nil {
		return nil, err
	}
	key, err := n.Key(value)
	if err != nil {
		return nil, err
	}
	return &CandidateValue{
		key:       Key(key),
		canonical: string(data),
		Value:     value,
	}, nil
}

// Key returns the value's content key.
func (v *CandidateValue) Key() Key { return v.key }

// Index returns the value's position in the compiled collection.
func (v *CandidateValue) Index() Index { return v.index }

func (v *CandidateValue) shape() string { return v.canonical }

// String renders the canonical encoding.
func (v *CandidateValue) String() string {
	return fmt.Sprintf("%s:%s", v.key, v.canonical)
}
