// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varres/varres/pkg/qualifier"
)

func compileResources(t *testing.T, cfg *SystemConfiguration, decls ...ResourceDecl) *Manager {
	t.Helper()
	b := NewBuilder(cfg)
	for _, decl := range decls {
		require.NoError(t, b.AddResource(decl))
	}
	m, err := b.Compile()
	require.NoError(t, err)
	return m
}

func jsonEqual(t *testing.T, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolved value mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_LanguageFallback(t *testing.T) {
	cfg := testConfig(t)
	m := compileResources(t, cfg, ResourceDecl{
		ID: "app.title",
		Candidates: []CandidateDecl{
			{JSON: map[string]any{"text": "Hello"}, Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}}},
			{JSON: map[string]any{"text": "Bonjour"}, Conditions: []ConditionDecl{{QualifierName: "language", Value: "fr"}}},
		},
	})

	value, err := m.Resolve("app.title", Context{"language": "en"})
	require.NoError(t, err)
	jsonEqual(t, map[string]any{"text": "Hello"}, value)

	value, err = m.Resolve("app.title", Context{"language": "en-US"})
	require.NoError(t, err)
	jsonEqual(t, map[string]any{"text": "Hello"}, value)

	value, err = m.Resolve("app.title", Context{"language": "fr"})
	require.NoError(t, err)
	jsonEqual(t, map[string]any{"text": "Bonjour"}, value)

	_, err = m.Resolve("app.title", Context{"language": "de"})
	assert.ErrorIs(t, err, ErrNoMatchingCandidate)
}

func TestResolve_TerritoryMacroRegion(t *testing.T) {
	cfg := testConfig(t)
	m := compileResources(t, cfg, ResourceDecl{
		ID: "prices.currency",
		Candidates: []CandidateDecl{
			{JSON: map[string]any{"symbol": "$L"}, Conditions: []ConditionDecl{{QualifierName: "currentTerritory", Value: "419"}}},
		},
	})

	value, err := m.Resolve("prices.currency", Context{"currentTerritory": "MX"})
	require.NoError(t, err)
	jsonEqual(t, map[string]any{"symbol": "$L"}, value)

	_, err = m.Resolve("prices.currency", Context{"currentTerritory": "ES"})
	assert.ErrorIs(t, err, ErrNoMatchingCandidate)
}

func TestResolve_PriorityTieBreak(t *testing.T) {
	cfg := testConfig(t)
	high := qualifier.Priority(800)
	low := qualifier.Priority(600)

	// Declaration order must not matter: the 800-priority condition wins.
	for _, flipped := range []bool{false, true} {
		candidates := []CandidateDecl{
			{JSON: "low", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en", Priority: &low}}},
			{JSON: "high", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en", Priority: &high}}},
		}
		if flipped {
			candidates[0], candidates[1] = candidates[1], candidates[0]
		}
		m := compileResources(t, cfg, ResourceDecl{ID: "msg", Candidates: candidates})

		value, err := m.Resolve("msg", Context{"language": "en"})
		require.NoError(t, err)
		assert.Equal(t, "high", value, "flipped=%t", flipped)
	}
}

func TestResolve_PartialAugment(t *testing.T) {
	cfg := testConfig(t)
	m := compileResources(t, cfg, ResourceDecl{
		ID: "settings",
		Candidates: []CandidateDecl{
			{
				JSON:       map[string]any{"a": 1, "b": 2},
				Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}},
			},
			{
				JSON:       map[string]any{"b": 20, "c": 3},
				Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}},
				IsPartial:  true,
			},
		},
	})

	value, err := m.Resolve("settings", Context{"language": "en"})
	require.NoError(t, err)
	jsonEqual(t, map[string]any{"a": float64(1), "b": float64(20), "c": float64(3)}, value)
}

func TestResolve_PartialReplaceAndDelete(t *testing.T) {
	cfg := testConfig(t)

	t.Run("replace", func(t *testing.T) {
		m := compileResources(t, cfg, ResourceDecl{
			ID: "settings",
			Candidates: []CandidateDecl{
				{JSON: map[string]any{"a": 1}, Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}}},
				{
					JSON:        map[string]any{"only": true},
					Conditions:  []ConditionDecl{{QualifierName: "language", Value: "en"}},
					IsPartial:   true,
					MergeMethod: MergeReplace,
				},
			},
		})
		value, err := m.Resolve("settings", Context{"language": "en"})
		require.NoError(t, err)
		jsonEqual(t, map[string]any{"only": true}, value)
	})

	t.Run("delete", func(t *testing.T) {
		m := compileResources(t, cfg, ResourceDecl{
			ID: "settings",
			Candidates: []CandidateDecl{
				{JSON: map[string]any{"a": 1, "b": 2}, Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}}},
				{
					JSON:        []any{"b", "missing"},
					Conditions:  []ConditionDecl{{QualifierName: "language", Value: "en"}},
					IsPartial:   true,
					MergeMethod: MergeDelete,
				},
			},
		})
		value, err := m.Resolve("settings", Context{"language": "en"})
		require.NoError(t, err)
		jsonEqual(t, map[string]any{"a": float64(1)}, value)
	})

	t.Run("augment array replaces and null deletes", func(t *testing.T) {
		m := compileResources(t, cfg, ResourceDecl{
			ID: "settings",
			Candidates: []CandidateDecl{
				{
					JSON:       map[string]any{"tags": []any{"x", "y"}, "drop": 1, "keep": true},
					Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}},
				},
				{
					JSON:       map[string]any{"tags": []any{"z"}, "drop": nil},
					Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}},
					IsPartial:  true,
				},
			},
		})
		value, err := m.Resolve("settings", Context{"language": "en"})
		require.NoError(t, err)
		jsonEqual(t, map[string]any{"tags": []any{"z"}, "keep": true}, value)
	})
}

func TestResolve_ContextList(t *testing.T) {
	cfg := testConfig(t)
	m := compileResources(t, cfg, ResourceDecl{
		ID: "menu",
		Candidates: []CandidateDecl{
			{JSON: "editor-menu", Conditions: []ConditionDecl{{QualifierName: "role", Value: "editor"}}},
		},
	})

	value, err := m.Resolve("menu", Context{"role": "admin,editor"})
	require.NoError(t, err)
	assert.Equal(t, "editor-menu", value)

	_, err = m.Resolve("menu", Context{"role": "admin,viewer"})
	assert.ErrorIs(t, err, ErrNoMatchingCandidate)
}

func TestResolve_MoreSpecificCandidateWins(t *testing.T) {
	cfg := testConfig(t)
	m := compileResources(t, cfg, ResourceDecl{
		ID: "greeting",
		Candidates: []CandidateDecl{
			{JSON: "generic", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}}},
			{JSON: "us-specific", Conditions: []ConditionDecl{
				{QualifierName: "language", Value: "en"},
				{QualifierName: "currentTerritory", Value: "US"},
			}},
		},
	})

	value, err := m.Resolve("greeting", Context{"language": "en", "currentTerritory": "US"})
	require.NoError(t, err)
	assert.Equal(t, "us-specific", value)

	value, err = m.Resolve("greeting", Context{"language": "en"})
	require.NoError(t, err)
	assert.Equal(t, "generic", value)
}

func TestResolve_ScoreMonotonicity(t *testing.T) {
	cfg := testConfig(t)
	base := qualifier.Priority(500)
	raised := qualifier.Priority(900)

	// Raising the priority of a matching condition never lowers the
	// candidate's rank.
	build := func(p qualifier.Priority) *Manager {
		return compileResources(t, cfg, ResourceDecl{
			ID: "msg",
			Candidates: []CandidateDecl{
				{JSON: "subject", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en", Priority: &p}}},
				{JSON: "rival", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en", Priority: &base}}},
			},
		})
	}

	ctx := Context{"language": "en"}
	value, err := build(base).Resolve("msg", ctx)
	require.NoError(t, err)
	// Equal vectors: declaration order decides.
	assert.Equal(t, "subject", value)

	value, err = build(raised).Resolve("msg", ctx)
	require.NoError(t, err)
	assert.Equal(t, "subject", value)
}

func TestResolve_OperatorAlwaysAndNever(t *testing.T) {
	cfg := testConfig(t)
	catchAll := qualifier.Priority(100)
	m := compileResources(t, cfg, ResourceDecl{
		ID: "fallback",
		Candidates: []CandidateDecl{
			{JSON: "specific", Conditions: []ConditionDecl{{QualifierName: "language", Value: "fr"}}},
			{JSON: "default", Conditions: []ConditionDecl{{QualifierName: "language", Operator: qualifier.OperatorAlways, Priority: &catchAll}}},
			{JSON: "buried", Conditions: []ConditionDecl{{QualifierName: "language", Operator: qualifier.OperatorNever, Priority: &catchAll}}},
		},
	})

	value, err := m.Resolve("fallback", Context{"language": "fr"})
	require.NoError(t, err)
	assert.Equal(t, "specific", value)

	value, err = m.Resolve("fallback", Context{"language": "de"})
	require.NoError(t, err)
	assert.Equal(t, "default", value)
}

func TestResolve_EmptyConditionSetIsLastResort(t *testing.T) {
	cfg := testConfig(t)
	m := compileResources(t, cfg, ResourceDecl{
		ID: "label",
		Candidates: []CandidateDecl{
			{JSON: "anyone"},
			{JSON: "english", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}}},
		},
	})

	value, err := m.Resolve("label", Context{"language": "en"})
	require.NoError(t, err)
	assert.Equal(t, "english", value)

	value, err = m.Resolve("label", Context{"language": "de"})
	require.NoError(t, err)
	assert.Equal(t, "anyone", value)
}

func TestResolve_QualifierDefaultsOverlay(t *testing.T) {
	// extended-example declares env with default value "prod".
	cfg := testConfig(t)
	m := compileResources(t, cfg, ResourceDecl{
		ID: "flags",
		Candidates: []CandidateDecl{
			{JSON: "prod-flags", Conditions: []ConditionDecl{{QualifierName: "env", Value: "prod"}}},
			{JSON: "dev-flags", Conditions: []ConditionDecl{{QualifierName: "env", Value: "dev"}}},
		},
	})

	value, err := m.Resolve("flags", Context{})
	require.NoError(t, err)
	assert.Equal(t, "prod-flags", value)

	value, err = m.Resolve("flags", Context{"env": "dev"})
	require.NoError(t, err)
	assert.Equal(t, "dev-flags", value)
}

func TestResolve_Errors(t *testing.T) {
	cfg := testConfig(t)
	m := compileResources(t, cfg, ResourceDecl{
		ID:         "thing",
		Candidates: []CandidateDecl{{JSON: "x", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}}}},
	})

	_, err := m.Resolve("missing", Context{"language": "en"})
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = m.Resolve("thing", Context{"nope": "x"})
	assert.ErrorIs(t, err, ErrInvalidContext)

	_, err = m.Resolve("thing", Context{"homeTerritory": "xx"})
	assert.ErrorIs(t, err, ErrInvalidContext)
	assert.ErrorContains(t, err, "homeTerritory=xx")
}

func TestResolver_ReuseAcrossResources(t *testing.T) {
	cfg := testConfig(t)
	m := compileResources(t, cfg,
		ResourceDecl{ID: "a", Candidates: []CandidateDecl{{JSON: "a-en", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}}}}},
		ResourceDecl{ID: "b", Candidates: []CandidateDecl{{JSON: "b-en", Conditions: []ConditionDecl{{QualifierName: "language", Value: "en"}}}}},
	)

	r, err := NewResolver(m, Context{"language": "en"})
	require.NoError(t, err)

	value, err := r.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "a-en", value)

	value, err = r.Resolve("b")
	require.NoError(t, err)
	assert.Equal(t, "b-en", value)

	cand, err := r.ResolveCandidate("a")
	require.NoError(t, err)
	assert.Equal(t, "a-en", cand.Value.Value)
}
