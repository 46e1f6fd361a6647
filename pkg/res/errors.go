// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import "errors"

// Sentinel errors surfaced by builders, managers and resolvers. Callers
// discriminate with errors.Is; messages carry the offending entity.
var (
	// ErrInvalidContext marks a resolution context naming an unknown
	// qualifier or carrying a value its type rejects.
	ErrInvalidContext = errors.New("invalid context")
	// ErrResourceNotFound marks a lookup of an unknown resource id.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrNoMatchingCandidate marks a resolution where every candidate was
	// discarded.
	ErrNoMatchingCandidate = errors.New("no matching candidate")
	// ErrKeyCollision marks an intern of an entity whose key is taken by a
	// differently-shaped entity.
	ErrKeyCollision = errors.New("key collision with differing shape")
	// ErrFrozen marks a mutation of a compiled builder.
	ErrFrozen = errors.New("collection is frozen")
)
