// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"
	"sort"
	"strings"

	"github.com/varres/varres/pkg/normalize"
)

// MergeMethod selects how a partial candidate folds into its base value.
type MergeMethod string

const (
	// MergeAugment deep-merges objects; arrays are replaced and a null
	// removes the key (RFC 7386 semantics).
	MergeAugment MergeMethod = "augment"
	// MergeReplace replaces the base value wholesale.
	MergeReplace MergeMethod = "replace"
	// MergeDelete drops the keys enumerated by the partial payload.
	MergeDelete MergeMethod = "delete"
)

// IsValid reports whether m is a known merge method.
func (m MergeMethod) IsValid() bool {
	switch m {
	case MergeAugment, MergeReplace, MergeDelete:
		return true
	default:
		return false
	}
}

// Candidate pairs a condition set with a payload inside a decision.
type Candidate struct {
	ConditionSet *ConditionSet
	Value        *CandidateValue
	IsPartial    bool
	Merge        MergeMethod
}

func (c Candidate) shape() string {
	return fmt.Sprintf("%s:%s:%t:%s", c.ConditionSet.Key(), c.Value.Key(), c.IsPartial, c.Merge)
}

// AbstractDecision is the payload-free shape of a decision: its condition
// sets in candidate order. Resources with identical condition shapes share
// one abstract decision.
type AbstractDecision struct {
	index         Index
	key           Key
	ConditionSets []*ConditionSet
}

// Key returns the abstract decision's content key.
func (d *AbstractDecision) Key() Key { return d.key }

// Index returns the abstract decision's collector position.
func (d *AbstractDecision) Index() Index { return d.index }

func (d *AbstractDecision) shape() string {
	keys := make([]string, len(d.ConditionSets))
	for i, cs := range d.ConditionSets {
		keys[i] = string(cs.Key())
	}
	sort.Strings(keys)
	return strings.Join(keys, "+")
}

// Decision is a concrete decision: an ordered list of candidates. Candidates
// are held most-specific-first.
type Decision struct {
	index      Index
	key        Key
	Abstract   *AbstractDecision
	Candidates []Candidate
}

// newDecision orders candidates by decreasing specificity and keys the
// decision. Specificity ties break by condition-set key ascending; a partial
// and non-partial pair over the same conditions keeps insertion order.
func newDecision(candidates []Candidate) (*Decision, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("decision has no candidates")
	}
	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if cmp := compareSpecificity(a.ConditionSet.specificity(), b.ConditionSet.specificity()); cmp != 0 {
			return cmp > 0
		}
		return a.ConditionSet.Key() < b.ConditionSet.Key()
	})

	sets := make([]*ConditionSet, len(ordered))
	for i, c := range ordered {
		sets[i] = c.ConditionSet
	}
	abstract := &AbstractDecision{ConditionSets: sets}
	abstract.key = Key(abstract.shape())

	d := &Decision{Abstract: abstract, Candidates: ordered}
	d.key = d.concreteKey()
	return d, nil
}

// concreteKey is `<abstract-key>|<hash of the JSON value sequence>`.
func (d *Decision) concreteKey() Key {
	values := make([]string, len(d.Candidates))
	for i, c := range d.Candidates {
		values[i] = c.Value.canonical
	}
	sequence := "[" + strings.Join(values, ",") + "]"
	return Key(fmt.Sprintf("%s|%s", d.Abstract.Key(), normalize.KeyOfString(sequence)))
}

// Key returns the decision's content key.
func (d *Decision) Key() Key { return d.key }

// Index returns the decision's position in the compiled collection.
func (d *Decision) Index() Index { return d.index }

func (d *Decision) shape() string {
	parts := make([]string, len(d.Candidates))
	for i, c := range d.Candidates {
		parts[i] = c.shape()
	}
	return strings.Join(parts, "+")
}

// ResourceType names a class of resources. The wire form carries only the
// key.
type ResourceType struct {
	index Index
	Name  string
}

// Key returns the resource type's identity key.
func (rt *ResourceType) Key() Key { return Key(rt.Name) }

// Index returns the resource type's position in the compiled collection.
func (rt *ResourceType) Index() Index { return rt.index }

func (rt *ResourceType) shape() string { return rt.Name }

// Resource is an identifier that resolves through a decision.
type Resource struct {
	index    Index
	ID       string
	Type     *ResourceType
	Decision *Decision
}

// Key returns the resource's identity key (its id).
func (r *Resource) Key() Key { return Key(r.ID) }

// Index returns the resource's position in the compiled collection.
func (r *Resource) Index() Index { return r.index }

func (r *Resource) shape() string {
	return fmt.Sprintf("%s:%s:%s", r.ID, r.Type.Name, r.Decision.Key())
}
