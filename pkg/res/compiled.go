// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"
	"sort"

	"github.com/varres/varres/pkg/normalize"
	"github.com/varres/varres/pkg/qualifier"
)

// Wire form of a compiled collection. Cross-references are positional
// indices into the sibling arrays, never keys, so bundles serialize without
// lifetime puzzles.

// CompiledCondition is the wire form of a condition.
type CompiledCondition struct {
	QualifierIndex int    `json:"qualifierIndex"`
	Value          string `json:"value"`
	Operator       string `json:"operator"`
	Priority       int    `json:"priority"`
}

// CompiledConditionSet is the wire form of a condition set.
type CompiledConditionSet struct {
	ConditionIndices []int `json:"conditionIndices"`
}

// CompiledCandidate is the wire form of a candidate.
type CompiledCandidate struct {
	ConditionSetIndex int    `json:"conditionSetIndex"`
	ValueIndex        int    `json:"valueIndex"`
	IsPartial         bool   `json:"isPartial,omitempty"`
	MergeMethod       string `json:"mergeMethod,omitempty"`
}

// CompiledDecision is the wire form of a concrete decision.
type CompiledDecision struct {
	Candidates []CompiledCandidate `json:"candidates"`
}

// CompiledResource is the wire form of a resource.
type CompiledResource struct {
	ID                string `json:"id"`
	ResourceTypeIndex int    `json:"resourceTypeIndex"`
	DecisionIndex     int    `json:"decisionIndex"`
}

// CompiledCollection is the serialized form of a compiled resource
// collection.
type CompiledCollection struct {
	QualifierTypes  []QualifierTypeDecl    `json:"qualifierTypes"`
	Qualifiers      []QualifierDecl        `json:"qualifiers"`
	ResourceTypes   []ResourceTypeDecl     `json:"resourceTypes"`
	Conditions      []CompiledCondition    `json:"conditions"`
	ConditionSets   []CompiledConditionSet `json:"conditionSets"`
	Decisions       []CompiledDecision     `json:"decisions"`
	Resources       []CompiledResource     `json:"resources"`
	CandidateValues []any                  `json:"candidateValues"`
}

// Compiled emits the collection in entity insertion order.
func (m *Manager) Compiled() (*CompiledCollection, error) {
	identity := func(n int) []Index {
		out := make([]Index, n)
		for i := range out {
			out[i] = Index(i)
		}
		return out
	}
	return m.emit(
		identity(m.conditions.size()),
		identity(m.sets.size()),
		identity(m.values.size()),
		identity(m.decisions.size()),
		identity(m.resources.size()),
	)
}

// NormalizedCompiled emits the collection with every array in canonical-key
// order, making the output independent of declaration order.
func (m *Manager) NormalizedCompiled() (*CompiledCollection, error) {
	return m.emit(
		orderByKey(m.conditions),
		orderByKey(m.sets),
		orderByKey(m.values),
		orderByKey(m.decisions),
		orderByKey(m.resources),
	)
}

// orderByKey returns the collector's indices sorted by entity key.
func orderByKey[T entity](c *collector[T]) []Index {
	order := make([]Index, len(c.items))
	for i := range order {
		order[i] = Index(i)
	}
	sort.Slice(order, func(i, j int) bool {
		return c.items[order[i]].Key() < c.items[order[j]].Key()
	})
	return order
}

// emit serializes the collection with the given per-kind orderings. Each
// ordering lists old indices in output order.
func (m *Manager) emit(condOrder, setOrder, valueOrder, decisionOrder, resourceOrder []Index) (*CompiledCollection, error) {
	condPos := invert(condOrder)
	setPos := invert(setOrder)
	valuePos := invert(valueOrder)
	decisionPos := invert(decisionOrder)

	decl := m.cfg.Decl()
	out := &CompiledCollection{
		QualifierTypes: decl.QualifierTypes,
		Qualifiers:     decl.Qualifiers,
		ResourceTypes:  decl.ResourceTypes,
	}

	for _, oldIdx := range condOrder {
		c, _ := m.conditions.getAt(oldIdx)
		qi, err := m.qualifierIndex(c.Qualifier)
		if err != nil {
			return nil, err
		}
		out.Conditions = append(out.Conditions, CompiledCondition{
			QualifierIndex: qi,
			Value:          c.Value,
			Operator:       string(c.Operator),
			Priority:       int(c.Priority),
		})
	}

	for _, oldIdx := range setOrder {
		cs, _ := m.sets.getAt(oldIdx)
		indices := make([]int, len(cs.Conditions))
		for i, c := range cs.Conditions {
			indices[i] = int(condPos[c.index])
		}
		out.ConditionSets = append(out.ConditionSets, CompiledConditionSet{ConditionIndices: indices})
	}

	for _, oldIdx := range valueOrder {
		v, _ := m.values.getAt(oldIdx)
		out.CandidateValues = append(out.CandidateValues, v.Value)
	}

	for _, oldIdx := range decisionOrder {
		d, _ := m.decisions.getAt(oldIdx)
		candidates := make([]CompiledCandidate, len(d.Candidates))
		for i, c := range d.Candidates {
			cc := CompiledCandidate{
				ConditionSetIndex: int(setPos[c.ConditionSet.index]),
				ValueIndex:        int(valuePos[c.Value.index]),
				IsPartial:         c.IsPartial,
			}
			if c.IsPartial {
				cc.MergeMethod = string(c.Merge)
			}
			candidates[i] = cc
		}
		out.Decisions = append(out.Decisions, CompiledDecision{Candidates: candidates})
	}

	for _, oldIdx := range resourceOrder {
		r, _ := m.resources.getAt(oldIdx)
		out.Resources = append(out.Resources, CompiledResource{
			ID:                r.ID,
			ResourceTypeIndex: int(r.Type.index),
			DecisionIndex:     int(decisionPos[r.Decision.index]),
		})
	}
	return out, nil
}

func invert(order []Index) map[Index]Index {
	pos := make(map[Index]Index, len(order))
	for newIdx, oldIdx := range order {
		pos[oldIdx] = Index(newIdx)
	}
	return pos
}

// NewManagerFromCompiled rehydrates a manager from a compiled collection.
// The configuration embedded in the collection is instantiated through
// registry; cross-references are resolved by index and structurally
// validated.
func NewManagerFromCompiled(c *CompiledCollection, registry *qualifier.Registry, n normalize.Normalizer) (*Manager, error) {
	if n == nil {
		n = normalize.NewCrc32Normalizer()
	}
	cfg, err := NewSystemConfiguration(SystemConfigurationDecl{
		QualifierTypes: c.QualifierTypes,
		Qualifiers:     c.Qualifiers,
		ResourceTypes:  c.ResourceTypes,
	}, registry, nil)
	if err != nil {
		return nil, err
	}

	m := newManager(cfg, n)
	qualifiers := cfg.Qualifiers()

	conditions := make([]*Condition, len(c.Conditions))
	for i, cc := range c.Conditions {
		if cc.QualifierIndex < 0 || cc.QualifierIndex >= len(qualifiers) {
			return nil, fmt.Errorf("condition %d: qualifier index %d out of range", i, cc.QualifierIndex)
		}
		priority := qualifier.Priority(cc.Priority)
		cond, err := newCondition(qualifiers[cc.QualifierIndex], cc.Value, qualifier.ConditionOperator(cc.Operator), &priority)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		interned, idx, err := m.conditions.add(cond)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		interned.index = idx
		conditions[i] = interned
	}

	sets := make([]*ConditionSet, len(c.ConditionSets))
	for i, ccs := range c.ConditionSets {
		members := make([]*Condition, len(ccs.ConditionIndices))
		for j, ci := range ccs.ConditionIndices {
			if ci < 0 || ci >= len(conditions) {
				return nil, fmt.Errorf("condition set %d: condition index %d out of range", i, ci)
			}
			members[j] = conditions[ci]
		}
		set, err := newConditionSet(members)
		if err != nil {
			return nil, fmt.Errorf("condition set %d: %w", i, err)
		}
		interned, idx, err := m.sets.add(set)
		if err != nil {
			return nil, fmt.Errorf("condition set %d: %w", i, err)
		}
		interned.index = idx
		sets[i] = interned
	}

	values := make([]*CandidateValue, len(c.CandidateValues))
	for i, raw := range c.CandidateValues {
		value, err := newCandidateValue(raw, n)
		if err != nil {
			return nil, fmt.Errorf("candidate value %d: %w", i, err)
		}
		interned, idx, err := m.values.add(value)
		if err != nil {
			return nil, fmt.Errorf("candidate value %d: %w", i, err)
		}
		interned.index = idx
		values[i] = interned
	}

	decisions := make([]*Decision, len(c.Decisions))
	for i, cd := range c.Decisions {
		candidates := make([]Candidate, len(cd.Candidates))
		for j, cand := range cd.Candidates {
			if cand.ConditionSetIndex < 0 || cand.ConditionSetIndex >= len(sets) {
				return nil, fmt.Errorf("decision %d: condition set index %d out of range", i, cand.ConditionSetIndex)
			}
			if cand.ValueIndex < 0 || cand.ValueIndex >= len(values) {
				return nil, fmt.Errorf("decision %d: value index %d out of range", i, cand.ValueIndex)
			}
			merge := MergeMethod(cand.MergeMethod)
			if merge == "" {
				merge = MergeAugment
			}
			if !merge.IsValid() {
				return nil, fmt.Errorf("decision %d: %s: unknown merge method", i, cand.MergeMethod)
			}
			candidates[j] = Candidate{
				ConditionSet: sets[cand.ConditionSetIndex],
				Value:        values[cand.ValueIndex],
				IsPartial:    cand.IsPartial,
				Merge:        merge,
			}
		}
		decision, err := newDecision(candidates)
		if err != nil {
			return nil, fmt.Errorf("decision %d: %w", i, err)
		}
		internedAbstract, idx, err := m.abstracts.add(decision.Abstract)
		if err != nil {
			return nil, fmt.Errorf("decision %d: %w", i, err)
		}
		internedAbstract.index = idx
		decision.Abstract = internedAbstract
		interned, idx, err := m.decisions.add(decision)
		if err != nil {
			return nil, fmt.Errorf("decision %d: %w", i, err)
		}
		interned.index = idx
		decisions[i] = interned
	}

	for i, cr := range c.Resources {
		if cr.ResourceTypeIndex < 0 || cr.ResourceTypeIndex >= len(m.resourceTypes) {
			return nil, fmt.Errorf("resource %d: resource type index %d out of range", i, cr.ResourceTypeIndex)
		}
		if cr.DecisionIndex < 0 || cr.DecisionIndex >= len(decisions) {
			return nil, fmt.Errorf("resource %d: decision index %d out of range", i, cr.DecisionIndex)
		}
		resource := &Resource{
			ID:       cr.ID,
			Type:     m.resourceTypes[cr.ResourceTypeIndex],
			Decision: decisions[cr.DecisionIndex],
		}
		interned, idx, err := m.resources.add(resource)
		if err != nil {
			return nil, fmt.Errorf("resource %d: %w", i, err)
		}
		interned.index = idx
	}

	m.freeze()
	return m, nil
}
