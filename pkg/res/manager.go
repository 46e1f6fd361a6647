// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"

	"github.com/varres/varres/pkg/normalize"
	"github.com/varres/varres/pkg/qualifier"
)

// Manager is a compiled, immutable resource collection. It is produced by
// Builder.Compile or rehydrated by the bundle loader, and may be shared
// freely across goroutines.
type Manager struct {
	cfg        *SystemConfiguration
	normalizer normalize.Normalizer

	conditions *collector[*Condition]
	sets       *collector[*ConditionSet]
	values     *collector[*CandidateValue]
	abstracts  *collector[*AbstractDecision]
	decisions  *collector[*Decision]
	resources  *collector[*Resource]

	resourceTypes []*ResourceType
	typesByName   map[string]*ResourceType
}

func newManager(cfg *SystemConfiguration, n normalize.Normalizer) *Manager {
	m := &Manager{
		cfg:         cfg,
		normalizer:  n,
		conditions:  newCollector[*Condition](),
		sets:        newCollector[*ConditionSet](),
		values:      newCollector[*CandidateValue](),
		abstracts:   newCollector[*AbstractDecision](),
		decisions:   newCollector[*Decision](),
		resources:   newCollector[*Resource](),
		typesByName: make(map[string]*ResourceType),
	}
	for i, name := range cfg.ResourceTypes() {
		rt := &ResourceType{index: Index(i), Name: name}
		m.resourceTypes = append(m.resourceTypes, rt)
		m.typesByName[name] = rt
	}
	return m
}

// intern folds one staged resource into the collectors.
func (m *Manager) intern(sr *stagedResource) error {
	candidates := make([]Candidate, 0, len(sr.candidates))
	for _, cand := range sr.candidates {
		conditions := make([]*Condition, 0, len(cand.Conditions))
		for _, cd := range cand.Conditions {
			q, ok := m.cfg.Qualifier(cd.QualifierName)
			if !ok {
				return fmt.Errorf("%s: unknown qualifier", cd.QualifierName)
			}
			cond, err := newCondition(q, cd.Value, cd.Operator, cd.Priority)
			if err != nil {
				return err
			}
			interned, idx, err := m.conditions.add(cond)
			if err != nil {
				return err
			}
			interned.index = idx
			conditions = append(conditions, interned)
		}

		set, err := newConditionSet(conditions)
		if err != nil {
			return err
		}
		internedSet, idx, err := m.sets.add(set)
		if err != nil {
			return err
		}
		internedSet.index = idx

		value, err := newCandidateValue(cand.JSON, m.normalizer)
		if err != nil {
			return err
		}
		internedValue, idx, err := m.values.add(value)
		if err != nil {
			return err
		}
		internedValue.index = idx

		candidates = append(candidates, Candidate{
			ConditionSet: internedSet,
			Value:        internedValue,
			IsPartial:    cand.IsPartial,
			Merge:        cand.MergeMethod,
		})
	}

	decision, err := newDecision(candidates)
	if err != nil {
		return err
	}
	internedAbstract, idx, err := m.abstracts.add(decision.Abstract)
	if err != nil {
		return err
	}
	internedAbstract.index = idx
	decision.Abstract = internedAbstract
	internedDecision, idx, err := m.decisions.add(decision)
	if err != nil {
		return err
	}
	internedDecision.index = idx

	rt, ok := m.typesByName[sr.typeName]
	if !ok {
		return fmt.Errorf("%s: unknown resource type", sr.typeName)
	}
	resource := &Resource{ID: sr.id, Type: rt, Decision: internedDecision}
	internedResource, idx, err := m.resources.add(resource)
	if err != nil {
		return err
	}
	internedResource.index = idx
	return nil
}

func (m *Manager) freeze() {
	m.conditions.freeze()
	m.sets.freeze()
	m.values.freeze()
	m.abstracts.freeze()
	m.decisions.freeze()
	m.resources.freeze()
}

// Configuration returns the system configuration the manager was built
// against.
func (m *Manager) Configuration() *SystemConfiguration {
	return m.cfg
}

// Normalizer returns the content-key normalizer in effect.
func (m *Manager) Normalizer() normalize.Normalizer {
	return m.normalizer
}

// Resource looks a resource up by id.
func (m *Manager) Resource(id string) (*Resource, error) {
	r, _, ok := m.resources.get(Key(id))
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrResourceNotFound)
	}
	return r, nil
}

// Resources returns all resources in index order.
func (m *Manager) Resources() []*Resource {
	return m.resources.items
}

// Counts reports the number of interned entities per kind.
func (m *Manager) Counts() map[string]int {
	return map[string]int{
		"conditions":      m.conditions.size(),
		"conditionSets":   m.sets.size(),
		"candidateValues": m.values.size(),
		"decisions":       m.decisions.size(),
		"resources":       m.resources.size(),
	}
}

// Resolve validates ctx against the configuration, overlays it onto the
// qualifier defaults and resolves the resource to its payload.
func (m *Manager) Resolve(resourceID string, ctx Context) (any, error) {
	r, err := NewResolver(m, ctx)
	if err != nil {
		return nil, err
	}
	return r.Resolve(resourceID)
}

// qualifierIndex maps a qualifier to its position in the configuration's
// declaration order, which is the wire order for qualifier references.
func (m *Manager) qualifierIndex(q *qualifier.Qualifier) (int, error) {
	for i, candidate := range m.cfg.Qualifiers() {
		if candidate == q {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: qualifier not in configuration", q.Name)
}
