// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON_SortsKeysAndDropsWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "object keys sorted",
			input: map[string]any{"b": 2, "a": 1},
			want:  `{"a":1,"b":2}`,
		},
		{
			name:  "nested objects",
			input: map[string]any{"z": map[string]any{"y": true, "x": nil}},
			want:  `{"z":{"x":null,"y":true}}`,
		},
		{
			name:  "array order preserved",
			input: []any{3, 1, 2},
			want:  `[3,1,2]`,
		},
		{
			name:  "string escaping",
			input: map[string]any{"s": "a\"b"},
			want:  `{"s":"a\"b"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCanonicalJSON_NumberForms(t *testing.T) {
	tests := []struct {
		name  string
		input string // raw JSON
		want  string
	}{
		{name: "integer", input: `1`, want: `1`},
		{name: "trailing zero fraction", input: `1.0`, want: `1`},
		{name: "exponent", input: `1e3`, want: `1000`},
		{name: "fraction", input: `1.5`, want: `1.5`},
		{name: "large int keeps precision", input: `9007199254740993`, want: `9007199254740993`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			dec := json.NewDecoder(strings.NewReader(tt.input))
			dec.UseNumber()
			require.NoError(t, dec.Decode(&v))
			got, err := CanonicalJSON(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCanonicalJSON_Idempotent(t *testing.T) {
	inputs := []any{
		map[string]any{"b": 2.0, "a": []any{1, "x", nil, true}},
		[]any{map[string]any{"k": 1.5}},
		"plain",
		nil,
		42,
	}
	for _, input := range inputs {
		first, err := CanonicalJSON(input)
		require.NoError(t, err)

		var decoded any
		require.NoError(t, json.Unmarshal(first, &decoded))
		second, err := CanonicalJSON(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}
}

func TestCrc32Normalizer_KeyMatchesNormalization(t *testing.T) {
	n := NewCrc32Normalizer()
	assert.Equal(t, "crc32", n.Name())

	a := map[string]any{"x": 1, "y": "two"}
	b := map[string]any{"y": "two", "x": 1.0}

	keyA, err := n.Key(a)
	require.NoError(t, err)
	keyB, err := n.Key(b)
	require.NoError(t, err)
	assert.Equal(t, keyA, keyB)
	assert.Len(t, keyA, 8)

	keyC, err := n.Key(map[string]any{"x": 2})
	require.NoError(t, err)
	assert.NotEqual(t, keyA, keyC)
}

func TestCanonicalJSON_RejectsUnsupported(t *testing.T) {
	_, err := CanonicalJSON(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	eq, err := Equal(map[string]any{"a": 1}, map[string]any{"a": 1.0})
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = Equal(map[string]any{"a": 1}, map[string]any{"a": 2})
	require.NoError(t, err)
	assert.False(t, eq)
}
