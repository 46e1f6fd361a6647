// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"
	"sort"

	"github.com/varres/varres/pkg/qualifier"
)

// Resolver answers resource queries for one context. Condition scores are
// cached per condition index, so resolving many resources against the same
// context does not re-score shared conditions. A Resolver is not safe for
// concurrent use; create one per goroutine.
type Resolver struct {
	m   *Manager
	ctx Context

	scores []condScore
}

type condScore struct {
	computed bool
	score    qualifier.MatchScore
}

// NewResolver validates ctx, overlays it onto the configuration's qualifier
// defaults and returns a resolver bound to the effective context.
func NewResolver(m *Manager, ctx Context) (*Resolver, error) {
	validated, err := validateContext(m.cfg, ctx)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		m:      m,
		ctx:    effectiveContext(m.cfg, validated),
		scores: make([]condScore, m.conditions.size()),
	}, nil
}

// Context returns the effective context the resolver operates under.
func (r *Resolver) Context() Context {
	return r.ctx.Clone()
}

// scoreCondition scores one condition against the context, cached by
// condition index.
func (r *Resolver) scoreCondition(c *Condition) qualifier.MatchScore {
	if cached := &r.scores[c.index]; cached.computed {
		return cached.score
	}
	contextValue, ok := r.ctx[c.Qualifier.Name]
	var score qualifier.MatchScore
	switch {
	case c.Operator == qualifier.OperatorAlways || c.Operator == qualifier.OperatorNever:
		score = c.Qualifier.Type.MatchOne(c.Value, contextValue, c.Operator)
	case !ok:
		score = qualifier.NoMatch
	default:
		score = c.Qualifier.Type.MatchOne(c.Value, contextValue, c.Operator)
	}
	r.scores[c.index] = condScore{computed: true, score: score}
	return score
}

// scorePair is one element of a candidate score vector.
type scorePair struct {
	priority qualifier.Priority
	score    qualifier.MatchScore
}

// rankedCandidate is a matching candidate with its score vector and its
// original position in the decision.
type rankedCandidate struct {
	candidate *Candidate
	vector    []scorePair
	position  int
}

// evaluate scores every candidate of a decision, discarding candidates with
// any non-matching condition, and returns the survivors ranked best-first.
func (r *Resolver) evaluate(d *Decision) []rankedCandidate {
	survivors := make([]rankedCandidate, 0, len(d.Candidates))
	for i := range d.Candidates {
		cand := &d.Candidates[i]
		vector := make([]scorePair, 0, len(cand.ConditionSet.Conditions))
		matched := true
		for _, cond := range cand.ConditionSet.Conditions {
			score := r.scoreCondition(cond)
			if score == qualifier.NoMatch {
				matched = false
				break
			}
			vector = append(vector, scorePair{priority: cond.Priority, score: score})
		}
		if !matched {
			continue
		}
		sort.SliceStable(vector, func(a, b int) bool {
			if vector[a].priority != vector[b].priority {
				return vector[a].priority > vector[b].priority
			}
			return vector[a].score > vector[b].score
		})
		survivors = append(survivors, rankedCandidate{candidate: cand, vector: vector, position: i})
	}

	sort.SliceStable(survivors, func(a, b int) bool {
		if cmp := compareVectors(survivors[a].vector, survivors[b].vector); cmp != 0 {
			return cmp > 0
		}
		// A partial candidate outranks a non-partial twin so overlays are
		// applied over their base rather than shadowed by it.
		if survivors[a].candidate.IsPartial != survivors[b].candidate.IsPartial {
			return survivors[a].candidate.IsPartial
		}
		return survivors[a].position < survivors[b].position
	})
	return survivors
}

// compareVectors orders two score vectors aligned by descending priority:
// elementwise higher score wins, then higher priority; on a common prefix
// the longer vector wins. Returns >0 when a outranks b.
func compareVectors(a, b []scorePair) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].score != b[i].score {
			if a[i].score > b[i].score {
				return 1
			}
			return -1
		}
		if a[i].priority != b[i].priority {
			if a[i].priority > b[i].priority {
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

// ResolveCandidate returns the best matching candidate without applying
// partial merges.
func (r *Resolver) ResolveCandidate(resourceID string) (*Candidate, error) {
	resource, err := r.m.Resource(resourceID)
	if err != nil {
		return nil, err
	}
	ranked := r.evaluate(resource.Decision)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%s: %w", resourceID, ErrNoMatchingCandidate)
	}
	return ranked[0].candidate, nil
}

// Resolve selects the best candidate for the resource and folds any partial
// candidates into it.
func (r *Resolver) Resolve(resourceID string) (any, error) {
	resource, err := r.m.Resource(resourceID)
	if err != nil {
		return nil, err
	}
	ranked := r.evaluate(resource.Decision)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%s: %w", resourceID, ErrNoMatchingCandidate)
	}

	// The base is the best-ranked non-partial candidate; every partial
	// ranked above it overlays the base, best-ranked applied last so it
	// wins conflicts. When only partials match, the lowest-ranked one
	// serves as the base.
	baseIdx := -1
	for i, rc := range ranked {
		if !rc.candidate.IsPartial {
			baseIdx = i
			break
		}
	}
	if baseIdx == -1 {
		baseIdx = len(ranked) - 1
	}

	result := ranked[baseIdx].candidate.Value.Value
	for i := baseIdx - 1; i >= 0; i-- {
		merged, err := applyMerge(result, ranked[i].candidate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", resourceID, err)
		}
		result = merged
	}
	return result, nil
}
