// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"
	"sort"
)

// DeclarativeResource is the declarative-file form of one candidate:
// a resource id, a payload and a map of qualifier conditions.
type DeclarativeResource struct {
	ID               string            `json:"id"`
	JSON             any               `json:"json"`
	Conditions       map[string]string `json:"conditions,omitempty"`
	IsPartial        bool              `json:"isPartial,omitempty"`
	MergeMethod      MergeMethod       `json:"mergeMethod,omitempty"`
	ResourceTypeName string            `json:"resourceTypeName,omitempty"`
}

// DeclarativeCollection groups declarative resources and contributes
// ambient conditions to everything nested beneath it. A nested collection's
// condition overrides its ancestors' on the same qualifier.
type DeclarativeCollection struct {
	Conditions  map[string]string       `json:"conditions,omitempty"`
	Resources   []DeclarativeResource   `json:"resources,omitempty"`
	Collections []DeclarativeCollection `json:"collections,omitempty"`
}

// AddDeclarative walks a collection hierarchy and stages every resource
// with its ambient conditions applied.
func (b *Builder) AddDeclarative(collection DeclarativeCollection) error {
	return b.addDeclarative(collection, nil)
}

func (b *Builder) addDeclarative(collection DeclarativeCollection, ambient map[string]string) error {
	scope := overlayConditions(ambient, collection.Conditions)
	for _, dr := range collection.Resources {
		merged := overlayConditions(scope, dr.Conditions)
		conditions := make([]ConditionDecl, 0, len(merged))
		for _, name := range sortedKeys(merged) {
			conditions = append(conditions, ConditionDecl{QualifierName: name, Value: merged[name]})
		}
		decl := ResourceDecl{
			ID:               dr.ID,
			ResourceTypeName: dr.ResourceTypeName,
			Candidates: []CandidateDecl{{
				JSON:        dr.JSON,
				Conditions:  conditions,
				IsPartial:   dr.IsPartial,
				MergeMethod: dr.MergeMethod,
			}},
		}
		if err := b.AddResource(decl); err != nil {
			return err
		}
	}
	for i, nested := range collection.Collections {
		if err := b.addDeclarative(nested, scope); err != nil {
			return fmt.Errorf("collection %d: %w", i, err)
		}
	}
	return nil
}

func overlayConditions(base, overlay map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
