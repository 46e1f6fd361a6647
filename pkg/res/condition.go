// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"
	"sort"
	"strings"

	"github.com/varres/varres/pkg/normalize"
	"github.com/varres/varres/pkg/qualifier"
)

// Condition is a (qualifier, value, operator, priority) predicate. The value
// is stored in the form the qualifier type normalized it to.
type Condition struct {
	index     Index
	key       Key
	Qualifier *qualifier.Qualifier
	Value     string
	Operator  qualifier.ConditionOperator
	Priority  qualifier.Priority
}

// newCondition validates value under the qualifier's type and builds the
// interned form. A nil priority takes the qualifier's default.
func newCondition(q *qualifier.Qualifier, value string, operator qualifier.ConditionOperator, priority *qualifier.Priority) (*Condition, error) {
	if operator == "" {
		operator = qualifier.OperatorMatches
	}
	normalized, err := q.Type.ValidateCondition(value, operator)
	if err != nil {
		return nil, fmt.Errorf("%s=%s: %w", q.Name, value, err)
	}
	p := q.DefaultPriority
	if priority != nil {
		p = *priority
	}
	if !p.IsValid() {
		return nil, fmt.Errorf("%s=%s: priority %d out of range", q.Name, value, p)
	}
	c := &Condition{
		Qualifier: q,
		Value:     normalized,
		Operator:  operator,
		Priority:  p,
	}
	c.key = Key(normalize.KeyOfString(c.shape()))
	return c, nil
}

// Key returns the condition's content key.
func (c *Condition) Key() Key { return c.key }

// Index returns the condition's position in the compiled collection.
func (c *Condition) Index() Index { return c.index }

// Token renders the condition in declarative token form.
func (c *Condition) Token() string {
	return fmt.Sprintf("%s=%s", c.Qualifier.Name, c.Value)
}

func (c *Condition) shape() string {
	return fmt.Sprintf("%s=%s@%s#%d", c.Qualifier.Name, c.Value, c.Operator, c.Priority)
}

// ConditionSet is an ordered, deduplicated collection of conditions that
// must all match. Conditions are held in canonical order.
type ConditionSet struct {
	index      Index
	key        Key
	Conditions []*Condition
}

// newConditionSet canonicalizes and keys a set of interned conditions.
// Duplicate qualifiers are rejected.
func newConditionSet(conditions []*Condition) (*ConditionSet, error) {
	seen := make(map[string]struct{}, len(conditions))
	for _, c := range conditions {
		if _, dup := seen[c.Qualifier.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate qualifier in condition set", c.Qualifier.Name)
		}
		seen[c.Qualifier.Name] = struct{}{}
	}
	ordered := make([]*Condition, len(conditions))
	copy(ordered, conditions)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Qualifier.DefaultPriority != b.Qualifier.DefaultPriority {
			return a.Qualifier.DefaultPriority > b.Qualifier.DefaultPriority
		}
		if a.Qualifier.Name != b.Qualifier.Name {
			return a.Qualifier.Name < b.Qualifier.Name
		}
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Operator < b.Operator
	})
	cs := &ConditionSet{Conditions: ordered}
	cs.key = Key(normalize.KeyOfString(cs.shape()))
	return cs, nil
}

// Key returns the condition set's content key.
func (cs *ConditionSet) Key() Key { return cs.key }

// Index returns the condition set's position in the compiled collection.
func (cs *ConditionSet) Index() Index { return cs.index }

func (cs *ConditionSet) shape() string {
	tokens := make([]string, len(cs.Conditions))
	for i, c := range cs.Conditions {
		tokens[i] = c.shape()
	}
	return strings.Join(tokens, ",")
}

// specificity is the descending multiset of condition priorities. Candidate
// ordering inside a decision compares these lexicographically.
func (cs *ConditionSet) specificity() []qualifier.Priority {
	priorities := make([]qualifier.Priority, len(cs.Conditions))
	for i, c := range cs.Conditions {
		priorities[i] = c.Priority
	}
	sort.Slice(priorities, func(i, j int) bool { return priorities[i] > priorities[j] })
	return priorities
}

// compareSpecificity orders two specificity vectors: elementwise higher
// priority wins; on a common prefix the longer vector is more specific.
// Returns >0 when a is more specific than b.
func compareSpecificity(a, b []qualifier.Priority) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	default:
		return 0
	}
}
