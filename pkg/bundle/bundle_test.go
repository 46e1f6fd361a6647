// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varres/varres/pkg/normalize"
	"github.com/varres/varres/pkg/res"
)

func buildManager(t *testing.T, decls ...res.ResourceDecl) *res.Manager {
	t.Helper()
	cfg, err := res.NewProfile(res.ProfileExtendedExample, nil, nil)
	require.NoError(t, err)
	b := res.NewBuilder(cfg)
	for _, decl := range decls {
		require.NoError(t, b.AddResource(decl))
	}
	m, err := b.Compile()
	require.NoError(t, err)
	return m
}

func titleDecls() []res.ResourceDecl {
	return []res.ResourceDecl{
		{
			ID: "app.title",
			Candidates: []res.CandidateDecl{
				{JSON: map[string]any{"text": "Hello"}, Conditions: []res.ConditionDecl{{QualifierName: "language", Value: "en"}}},
				{JSON: map[string]any{"text": "Bonjour"}, Conditions: []res.ConditionDecl{{QualifierName: "language", Value: "fr"}}},
			},
		},
	}
}

func TestBuild_Metadata(t *testing.T) {
	m := buildManager(t, titleDecls()...)

	builtAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b, err := Build(m, BuildOptions{Version: "1.2.3", Description: "strings", Now: builtAt})
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01T12:00:00Z", b.Metadata.DateBuilt)
	assert.Equal(t, "crc32", b.Metadata.Normalizer)
	assert.Equal(t, "1.2.3", b.Metadata.Version)
	assert.Equal(t, "strings", b.Metadata.Description)
	assert.Len(t, b.Metadata.Checksum, 8)
}

func TestLoad_RoundTripResolution(t *testing.T) {
	m := buildManager(t, titleDecls()...)
	sealed, err := Build(m, BuildOptions{Normalize: true})
	require.NoError(t, err)
	data, err := Encode(sealed)
	require.NoError(t, err)

	loaded, err := Load(data, LoadOptions{})
	require.NoError(t, err)

	for _, tt := range []struct {
		ctx  res.Context
		want string
	}{
		{ctx: res.Context{"language": "en"}, want: "Hello"},
		{ctx: res.Context{"language": "en-US"}, want: "Hello"},
		{ctx: res.Context{"language": "fr"}, want: "Bonjour"},
	} {
		want, err := m.Resolve("app.title", tt.ctx)
		require.NoError(t, err)
		got, err := loaded.Resolve("app.title", tt.ctx)
		require.NoError(t, err)

		equal, err := normalize.Equal(want, got)
		require.NoError(t, err)
		assert.True(t, equal, "context %v", tt.ctx)
		assert.Equal(t, tt.want, got.(map[string]any)["text"])
	}

	_, err = loaded.Resolve("app.title", res.Context{"language": "de"})
	assert.ErrorIs(t, err, res.ErrNoMatchingCandidate)
}

func TestLoad_IntegrityFailure(t *testing.T) {
	m := buildManager(t, titleDecls()...)
	sealed, err := Build(m, BuildOptions{Normalize: true})
	require.NoError(t, err)
	data, err := Encode(sealed)
	require.NoError(t, err)

	// Mutate the compiled collection without touching the checksum.
	var tampered Bundle
	require.NoError(t, json.Unmarshal(data, &tampered))
	tampered.CompiledCollection.Resources[0].ID = "app.renamed"
	tamperedData, err := json.Marshal(&tampered)
	require.NoError(t, err)

	_, err = Load(tamperedData, LoadOptions{})
	assert.ErrorIs(t, err, ErrIntegrity)

	loaded, err := Load(tamperedData, LoadOptions{SkipChecksumVerification: true})
	require.NoError(t, err)
	_, err = loaded.Resource("app.renamed")
	assert.NoError(t, err)
}

func TestLoad_ConfigMismatch(t *testing.T) {
	m := buildManager(t, titleDecls()...)
	sealed, err := Build(m, BuildOptions{})
	require.NoError(t, err)

	sealed.Config.Qualifiers[0].DefaultPriority = 1
	_, err = LoadBundle(sealed, LoadOptions{SkipChecksumVerification: true})
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestLoad_UnknownNormalizer(t *testing.T) {
	m := buildManager(t, titleDecls()...)
	sealed, err := Build(m, BuildOptions{})
	require.NoError(t, err)

	sealed.Metadata.Normalizer = "sha512"
	_, err = LoadBundle(sealed, LoadOptions{})
	assert.ErrorContains(t, err, "unknown normalizer")
}

func TestBuild_DeterministicWithNormalization(t *testing.T) {
	builtAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	decls := []res.ResourceDecl{
		{
			ID: "a",
			Candidates: []res.CandidateDecl{
				{JSON: "a-en", Conditions: []res.ConditionDecl{{QualifierName: "language", Value: "en"}}},
			},
		},
		{
			ID: "b",
			Candidates: []res.CandidateDecl{
				{JSON: "b-en", Conditions: []res.ConditionDecl{{QualifierName: "language", Value: "en"}}},
				{JSON: "b-mx", Conditions: []res.ConditionDecl{{QualifierName: "currentTerritory", Value: "MX"}}},
			},
		},
	}
	flipped := []res.ResourceDecl{decls[1], decls[0]}

	encode := func(input []res.ResourceDecl) []byte {
		m := buildManager(t, input...)
		sealed, err := Build(m, BuildOptions{Normalize: true, Now: builtAt})
		require.NoError(t, err)
		data, err := Encode(sealed)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, string(encode(decls)), string(encode(flipped)))
}

func TestLoad_StructuralErrors(t *testing.T) {
	_, err := Load([]byte("{not json"), LoadOptions{})
	assert.Error(t, err)

	_, err = LoadBundle(&Bundle{}, LoadOptions{})
	assert.ErrorContains(t, err, "missing compiled collection")
}
