// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"
	"sort"
	"strings"

	"github.com/varres/varres/pkg/qualifier"
)

// Token grammars for declarative input:
//
//	condition token:      <qualifier>=<value> | <value>
//	condition set token:  condition tokens joined by ","
//	context entry token:  <qualifier>=<value> | <value>
//	context token:        entry tokens joined by "|"
//	defaults token:       <qualifier>=<value> entries joined by "|"
//
// Qualifier names are case-sensitive; anonymous values bind to the
// highest-priority token-optional qualifier whose type accepts them.

// ParseConditionToken parses one condition token against cfg.
func ParseConditionToken(cfg *SystemConfiguration, token string) (ConditionDecl, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ConditionDecl{}, fmt.Errorf("empty condition token")
	}
	if name, value, ok := strings.Cut(token, "="); ok {
		q, found := cfg.Qualifier(strings.TrimSpace(name))
		if !found {
			return ConditionDecl{}, fmt.Errorf("%s: unknown qualifier", strings.TrimSpace(name))
		}
		return ConditionDecl{QualifierName: q.Name, Value: strings.TrimSpace(value)}, nil
	}
	q, err := bindAnonymous(cfg, token, func(q *qualifier.Qualifier) bool {
		_, err := q.Type.ValidateCondition(token, qualifier.OperatorMatches)
		return err == nil
	})
	if err != nil {
		return ConditionDecl{}, err
	}
	return ConditionDecl{QualifierName: q.Name, Value: token}, nil
}

// ParseConditionSetToken parses a comma-joined list of condition tokens.
func ParseConditionSetToken(cfg *SystemConfiguration, token string) ([]ConditionDecl, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	parts := strings.Split(token, ",")
	decls := make([]ConditionDecl, 0, len(parts))
	for _, part := range parts {
		decl, err := ParseConditionToken(cfg, part)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// ParseContextToken parses a pipe-joined list of context entries.
func ParseContextToken(cfg *SystemConfiguration, token string) (Context, error) {
	ctx := make(Context)
	if strings.TrimSpace(token) == "" {
		return ctx, nil
	}
	for _, part := range strings.Split(token, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty context entry")
		}
		var q *qualifier.Qualifier
		var value string
		if name, v, ok := strings.Cut(part, "="); ok {
			found, okQ := cfg.Qualifier(strings.TrimSpace(name))
			if !okQ {
				return nil, fmt.Errorf("%s: unknown qualifier: %w", strings.TrimSpace(name), ErrInvalidContext)
			}
			q, value = found, strings.TrimSpace(v)
		} else {
			found, err := bindAnonymous(cfg, part, func(q *qualifier.Qualifier) bool {
				_, err := q.Type.ValidateContextValue(part)
				return err == nil
			})
			if err != nil {
				return nil, err
			}
			q, value = found, part
		}
		if _, dup := ctx[q.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate context qualifier", q.Name)
		}
		ctx[q.Name] = value
	}
	return ctx, nil
}

// ParseQualifierDefaults parses a pipe-joined list of qualifier default
// value entries; anonymous entries are not allowed here.
func ParseQualifierDefaults(cfg *SystemConfiguration, token string) (map[string]string, error) {
	defaults := make(map[string]string)
	if strings.TrimSpace(token) == "" {
		return defaults, nil
	}
	for _, part := range strings.Split(token, "|") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%s: malformed default value token", strings.TrimSpace(part))
		}
		q, found := cfg.Qualifier(strings.TrimSpace(name))
		if !found {
			return nil, fmt.Errorf("%s: unknown qualifier", strings.TrimSpace(name))
		}
		if _, dup := defaults[q.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate default value", q.Name)
		}
		defaults[q.Name] = strings.TrimSpace(value)
	}
	return defaults, nil
}

// bindAnonymous resolves an anonymous token value to the token-optional
// qualifier with the highest default priority whose type accepts it.
func bindAnonymous(cfg *SystemConfiguration, value string, accepts func(*qualifier.Qualifier) bool) (*qualifier.Qualifier, error) {
	candidates := make([]*qualifier.Qualifier, 0)
	for _, q := range cfg.Qualifiers() {
		if q.TokenIsOptional {
			candidates = append(candidates, q)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DefaultPriority > candidates[j].DefaultPriority
	})
	for _, q := range candidates {
		if accepts(q) {
			return q, nil
		}
	}
	return nil, fmt.Errorf("%s: no qualifier accepts anonymous value", value)
}
