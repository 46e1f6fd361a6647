// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestM49Provider_Contains(t *testing.T) {
	p := NewM49Provider()

	tests := []struct {
		name      string
		container string
		member    string
		want      bool
	}{
		{name: "latin america contains mexico", container: "419", member: "MX", want: true},
		{name: "latin america contains brazil", container: "419", member: "BR", want: true},
		{name: "americas contains mexico", container: "019", member: "MX", want: true},
		{name: "world contains everything", container: "001", member: "JP", want: true},
		{name: "latin america does not contain spain", container: "419", member: "ES", want: false},
		{name: "no self containment", container: "419", member: "419", want: false},
		{name: "unknown member", container: "419", member: "ZZ", want: false},
		{name: "country contains nothing", container: "MX", member: "419", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Contains(tt.container, tt.member))
		})
	}
}

func TestM49Provider_Parent(t *testing.T) {
	p := NewM49Provider()

	parent, ok := p.Parent("US")
	assert.True(t, ok)
	assert.Equal(t, "021", parent)

	parent, ok = p.Parent("CA")
	assert.True(t, ok)
	assert.Equal(t, "021", parent)

	_, ok = p.Parent("ZZ")
	assert.False(t, ok)

	_, ok = p.Parent("001")
	assert.False(t, ok)
}

func TestM49Provider_IsKnown(t *testing.T) {
	p := NewM49Provider()
	assert.True(t, p.IsKnown("MX"))
	assert.True(t, p.IsKnown("419"))
	assert.True(t, p.IsKnown("001"))
	assert.False(t, p.IsKnown("ZZ"))
}

func TestShapes(t *testing.T) {
	assert.True(t, IsAlpha2("US"))
	assert.False(t, IsAlpha2("us"))
	assert.False(t, IsAlpha2("USA"))
	assert.True(t, IsNumeric3("419"))
	assert.False(t, IsNumeric3("41"))
	assert.True(t, IsWellFormed("419"))
	assert.True(t, IsWellFormed("DE"))
	assert.False(t, IsWellFormed("d3"))
}
