// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"

	"github.com/varres/varres/pkg/normalize"
	"github.com/varres/varres/pkg/qualifier"
)

// DefaultResourceType is assumed when a declaration names no resource type.
const DefaultResourceType = "json"

// ConditionDecl declares one condition of a candidate.
type ConditionDecl struct {
	QualifierName string                      `json:"qualifierName"`
	Value         string                      `json:"value"`
	Operator      qualifier.ConditionOperator `json:"operator,omitempty"`
	Priority      *qualifier.Priority         `json:"priority,omitempty"`
}

// CandidateDecl declares one candidate of a resource.
type CandidateDecl struct {
	JSON        any             `json:"json"`
	Conditions  []ConditionDecl `json:"conditions,omitempty"`
	IsPartial   bool            `json:"isPartial,omitempty"`
	MergeMethod MergeMethod     `json:"mergeMethod,omitempty"`
}

// ResourceDecl declares a resource and its candidates.
type ResourceDecl struct {
	ID               string          `json:"id"`
	ResourceTypeName string          `json:"resourceTypeName,omitempty"`
	Candidates       []CandidateDecl `json:"candidates"`
}

// Builder ingests resource declarations and compiles them into a Manager.
// Declarations are validated as they arrive and never partially applied;
// interning happens at Compile. Builders are not safe for concurrent use.
type Builder struct {
	cfg        *SystemConfiguration
	normalizer normalize.Normalizer
	resources  []*stagedResource
	byID       map[string]*stagedResource
	compiled   bool
}

type stagedResource struct {
	id         string
	typeName   string
	candidates []CandidateDecl
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNormalizer substitutes the content-key normalizer. The default is
// CRC32 over canonical JSON.
func WithNormalizer(n normalize.Normalizer) BuilderOption {
	return func(b *Builder) {
		b.normalizer = n
	}
}

// NewBuilder returns a builder over the given configuration.
func NewBuilder(cfg *SystemConfiguration, opts ...BuilderOption) *Builder {
	b := &Builder{
		cfg:        cfg,
		normalizer: normalize.NewCrc32Normalizer(),
		byID:       make(map[string]*stagedResource),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddResource validates and stages a declaration. Declaring an id again
// appends candidates to the existing resource; the resource type must
// agree.
func (b *Builder) AddResource(decl ResourceDecl) error {
	if b.compiled {
		return ErrFrozen
	}
	if decl.ID == "" {
		return fmt.Errorf("resource declaration has no id")
	}
	typeName := decl.ResourceTypeName
	if typeName == "" {
		typeName = DefaultResourceType
	}
	if !b.cfg.HasResourceType(typeName) {
		return fmt.Errorf("%s: unknown resource type %q", decl.ID, typeName)
	}
	if len(decl.Candidates) == 0 {
		return fmt.Errorf("%s: resource declaration has no candidates", decl.ID)
	}

	staged := make([]CandidateDecl, 0, len(decl.Candidates))
	for i, cand := range decl.Candidates {
		validated, err := b.validateCandidate(cand)
		if err != nil {
			return fmt.Errorf("%s: candidate %d: %w", decl.ID, i, err)
		}
		staged = append(staged, validated)
	}

	if existing, ok := b.byID[decl.ID]; ok {
		if existing.typeName != typeName {
			return fmt.Errorf("%s: resource type %q conflicts with earlier %q", decl.ID, typeName, existing.typeName)
		}
		existing.candidates = append(existing.candidates, staged...)
		return nil
	}
	sr := &stagedResource{id: decl.ID, typeName: typeName, candidates: staged}
	b.resources = append(b.resources, sr)
	b.byID[decl.ID] = sr
	return nil
}

// validateCandidate checks a candidate declaration without interning
// anything, returning it with defaults filled in.
func (b *Builder) validateCandidate(cand CandidateDecl) (CandidateDecl, error) {
	if cand.MergeMethod == "" {
		cand.MergeMethod = MergeAugment
	}
	if !cand.MergeMethod.IsValid() {
		return CandidateDecl{}, fmt.Errorf("%s: unknown merge method", cand.MergeMethod)
	}
	if _, err := b.normalizer.Key(cand.JSON); err != nil {
		return CandidateDecl{}, fmt.Errorf("invalid candidate value: %w", err)
	}
	seen := make(map[string]struct{}, len(cand.Conditions))
	for _, cd := range cand.Conditions {
		q, ok := b.cfg.Qualifier(cd.QualifierName)
		if !ok {
			return CandidateDecl{}, fmt.Errorf("%s: unknown qualifier", cd.QualifierName)
		}
		if _, dup := seen[q.Name]; dup {
			return CandidateDecl{}, fmt.Errorf("%s: duplicate qualifier in condition set", q.Name)
		}
		seen[q.Name] = struct{}{}
		if _, err := newCondition(q, cd.Value, cd.Operator, cd.Priority); err != nil {
			return CandidateDecl{}, err
		}
	}
	return cand, nil
}

// AddConditionSetToken is a convenience that parses token-grammar conditions
// and attaches them to a candidate declaration.
func (b *Builder) AddConditionSetToken(id string, json any, token string) error {
	conditions, err := ParseConditionSetToken(b.cfg, token)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return b.AddResource(ResourceDecl{
		ID:         id,
		Candidates: []CandidateDecl{{JSON: json, Conditions: conditions}},
	})
}

// Compile interns every staged entity and freezes the builder. The returned
// Manager is immutable and safe for concurrent use.
func (b *Builder) Compile() (*Manager, error) {
	if b.compiled {
		return nil, ErrFrozen
	}
	m := newManager(b.cfg, b.normalizer)
	for _, sr := range b.resources {
		if err := m.intern(sr); err != nil {
			return nil, fmt.Errorf("%s: %w", sr.id, err)
		}
	}
	m.freeze()
	b.compiled = true
	return m, nil
}
