// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package qualifier

import (
	"fmt"
	"regexp"
	"strings"
)

// SystemTypeLiteral is the registered kind tag for literal matching.
const SystemTypeLiteral = "literal"

// identifierPattern bounds what a literal value may look like when no
// enumeration constrains it.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// LiteralConfig is the configuration blob of the literal kind.
type LiteralConfig struct {
	// CaseSensitive makes comparisons exact; by default values compare
	// case-insensitively after whitespace trimming.
	CaseSensitive bool `json:"caseSensitive,omitempty"`
	// Values, when non-empty, enumerates the only admissible values.
	Values []string `json:"values,omitempty"`
	// Hierarchy maps child values to parent values for ancestry matching.
	Hierarchy map[string]string `json:"hierarchy,omitempty"`
}

// LiteralType matches by equality, optionally constrained to an enumeration
// and optionally scored through a value hierarchy.
type LiteralType struct {
	base
	cfg       LiteralConfig
	hierarchy *Hierarchy
}

// NewLiteralType builds a literal kind instance.
func NewLiteralType(name string, allowContextList bool, cfg LiteralConfig) (*LiteralType, error) {
	t := &LiteralType{
		base: base{name: name, systemType: SystemTypeLiteral, allowContextList: allowContextList},
		cfg:  cfg,
	}
	for _, v := range cfg.Values {
		if !identifierPattern.MatchString(v) {
			return nil, fmt.Errorf("%s: invalid enumerated value", v)
		}
	}
	if len(cfg.Hierarchy) > 0 {
		h, err := NewHierarchy(cfg.Hierarchy, cfg.Values)
		if err != nil {
			return nil, err
		}
		t.hierarchy = h
	}
	return t, nil
}

func (t *LiteralType) ConfigJSON() any {
	return t.cfg
}

// normalize applies the kind's comparison rule: trim, and fold case unless
// configured case-sensitive.
func (t *LiteralType) normalize(value string) string {
	value = strings.TrimSpace(value)
	if !t.cfg.CaseSensitive {
		value = strings.ToLower(value)
	}
	return value
}

func (t *LiteralType) isValidValue(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if len(t.cfg.Values) > 0 {
		for _, v := range t.cfg.Values {
			if t.normalize(v) == t.normalize(value) {
				return true
			}
		}
		return false
	}
	return identifierPattern.MatchString(value)
}

func (t *LiteralType) ValidateCondition(value string, operator ConditionOperator) (string, error) {
	if err := t.validateOperator(value, operator); err != nil {
		return "", err
	}
	if operator != OperatorMatches {
		return "", nil
	}
	if !t.isValidValue(value) {
		return "", fmt.Errorf("%s: invalid condition value", value)
	}
	return t.normalize(value), nil
}

func (t *LiteralType) ValidateContextValue(value string) (string, error) {
	if t.allowContextList && strings.Contains(value, ",") {
		members := splitList(value)
		normalized := make([]string, len(members))
		for i, member := range members {
			if !t.isValidValue(member) {
				return "", fmt.Errorf("%s: invalid context value", member)
			}
			normalized[i] = t.normalize(member)
		}
		return strings.Join(normalized, ","), nil
	}
	if !t.isValidValue(value) {
		return "", fmt.Errorf("%s: invalid context value", value)
	}
	return t.normalize(value), nil
}

func (t *LiteralType) MatchOne(condition, context string, operator ConditionOperator) MatchScore {
	switch operator {
	case OperatorAlways:
		return PerfectMatch
	case OperatorNever:
		return NoMatch
	case OperatorMatches:
		return matchBest(context, t.allowContextList, func(member string) MatchScore {
			return t.matchSingle(condition, member)
		})
	default:
		return NoMatch
	}
}

func (t *LiteralType) matchSingle(condition, context string) MatchScore {
	cond, ctx := t.normalize(condition), t.normalize(context)
	if t.hierarchy != nil {
		return t.hierarchy.Match(cond, ctx)
	}
	if cond == ctx {
		return PerfectMatch
	}
	return NoMatch
}

func (t *LiteralType) IsPotentialMatch(condition, context string) bool {
	if !t.isValidValue(condition) {
		return false
	}
	if _, err := t.ValidateContextValue(context); err != nil {
		return false
	}
	return t.MatchOne(condition, context, OperatorMatches) > NoMatch
}
