// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package qualifier

import (
	"fmt"
	"strings"

	"github.com/varres/varres/pkg/region"
)

// SystemTypeTerritory is the registered kind tag for territory matching.
const SystemTypeTerritory = "territory"

// Territory match scores below a perfect match.
const (
	scoreContained  MatchScore = 650
	scoreSameParent MatchScore = 300
)

// TerritoryConfig is the configuration blob of the territory kind.
type TerritoryConfig struct {
	// AcceptLowercase admits lowercase input; values are always compared
	// uppercased.
	AcceptLowercase bool `json:"acceptLowercase,omitempty"`
}

// TerritoryType matches ISO 3166-1 alpha-2 territories and UN M.49
// macro-regions through the region-containment collaborator.
type TerritoryType struct {
	base
	cfg     TerritoryConfig
	regions region.Provider
}

// NewTerritoryType builds a territory kind instance with the given
// containment provider. A nil provider selects the built-in M.49 provider.
func NewTerritoryType(name string, allowContextList bool, cfg TerritoryConfig, regions region.Provider) *TerritoryType {
	if regions == nil {
		regions = region.NewM49Provider()
	}
	return &TerritoryType{
		base:    base{name: name, systemType: SystemTypeTerritory, allowContextList: allowContextList},
		cfg:     cfg,
		regions: regions,
	}
}

func (t *TerritoryType) ConfigJSON() any {
	return t.cfg
}

func (t *TerritoryType) normalize(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if !t.cfg.AcceptLowercase && trimmed != strings.ToUpper(trimmed) {
		return "", false
	}
	upper := strings.ToUpper(trimmed)
	return upper, region.IsWellFormed(upper)
}

func (t *TerritoryType) ValidateCondition(value string, operator ConditionOperator) (string, error) {
	if err := t.validateOperator(value, operator); err != nil {
		return "", err
	}
	if operator != OperatorMatches {
		return "", nil
	}
	normalized, ok := t.normalize(value)
	if !ok {
		return "", fmt.Errorf("%s: invalid condition value", value)
	}
	return normalized, nil
}

func (t *TerritoryType) ValidateContextValue(value string) (string, error) {
	if t.allowContextList && strings.Contains(value, ",") {
		members := splitList(value)
		normalized := make([]string, len(members))
		for i, member := range members {
			n, ok := t.normalize(member)
			if !ok {
				return "", fmt.Errorf("%s: invalid context value", member)
			}
			normalized[i] = n
		}
		return strings.Join(normalized, ","), nil
	}
	normalized, ok := t.normalize(value)
	if !ok {
		return "", fmt.Errorf("%s: invalid context value", value)
	}
	return normalized, nil
}

func (t *TerritoryType) MatchOne(condition, context string, operator ConditionOperator) MatchScore {
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

func (t *TerritoryType) matchSingle(condition, context string) MatchScore {
	cond := strings.ToUpper(strings.TrimSpace(condition))
	ctx := strings.ToUpper(strings.TrimSpace(context))
	if !region.IsWellFormed(cond) || !region.IsWellFormed(ctx) {
		return NoMatch
	}
	if cond == ctx {
		return PerfectMatch
	}
	if t.regions.Contains(cond, ctx) {
		return scoreContained
	}
	condParent, okCond := t.regions.Parent(cond)
	ctxParent, okCtx := t.regions.Parent(ctx)
	if okCond && okCtx && condParent == ctxParent {
		return scoreSameParent
	}
	return NoMatch
}

func (t *TerritoryType) IsPotentialMatch(condition, context string) bool {
	if _, ok := t.normalize(condition); !ok {
		return false
	}
	if _, err := t.ValidateContextValue(context); err != nil {
		return false
	}
	return t.MatchOne(condition, context, OperatorMatches) > NoMatch
}
