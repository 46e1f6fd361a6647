// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package qualifier

import (
	"fmt"
	"strings"

	"github.com/varres/varres/pkg/langtag"
	"github.com/varres/varres/pkg/region"
)

// SystemTypeLanguage is the registered kind tag for BCP-47 language
// matching.
const SystemTypeLanguage = "language"

// tierScores fixes the engine's mapping from similarity tiers to match
// scores. Changing any entry changes resolution results for every bundle;
// the values are part of the engine contract.
var tierScores = map[langtag.Tier]MatchScore{
	langtag.TierExact:           1000,
	langtag.TierNeutralRegion:   900,
	langtag.TierUndetermined:    750,
	langtag.TierMacroRegion:     650,
	langtag.TierPreferredRegion: 500,
	langtag.TierSibling:         300,
	langtag.TierNone:            0,
}

// LanguageConfig is the configuration blob of the language kind. The kind
// has no tunable knobs; the blob exists so bundles round-trip a stable
// configuration shape.
type LanguageConfig struct{}

// LanguageType scores conditions by BCP-47 similarity through the
// language-similarity collaborator.
type LanguageType struct {
	base
	cfg      LanguageConfig
	comparer langtag.Comparer
}

// NewLanguageType builds a language kind instance with the given comparer.
// A nil comparer selects the built-in subtag comparer.
func NewLanguageType(name string, allowContextList bool, cfg LanguageConfig, comparer langtag.Comparer) *LanguageType {
	if comparer == nil {
		comparer = langtag.NewSubtagComparer(region.NewM49Provider())
	}
	return &LanguageType{
		base:     base{name: name, systemType: SystemTypeLanguage, allowContextList: allowContextList},
		cfg:      cfg,
		comparer: comparer,
	}
}

func (t *LanguageType) ConfigJSON() any {
	return t.cfg
}

func (t *LanguageType) ValidateCondition(value string, operator ConditionOperator) (string, error) {
	if err := t.validateOperator(value, operator); err != nil {
		return "", err
	}
	if operator != OperatorMatches {
		return "", nil
	}
	parsed, err := langtag.Parse(value)
	if err != nil {
		return "", fmt.Errorf("%s: invalid condition value", value)
	}
	return parsed.String(), nil
}

func (t *LanguageType) ValidateContextValue(value string) (string, error) {
	if t.allowContextList && strings.Contains(value, ",") {
		members := splitList(value)
		normalized := make([]string, len(members))
		for i, member := range members {
			parsed, err := langtag.Parse(member)
			if err != nil {
				return "", fmt.Errorf("%s: invalid context value", member)
			}
			normalized[i] = parsed.String()
		}
		return strings.Join(normalized, ","), nil
	}
	parsed, err := langtag.Parse(value)
	if err != nil {
		return "", fmt.Errorf("%s: invalid context value", value)
	}
	return parsed.String(), nil
}

func (t *LanguageType) MatchOne(condition, context string, operator ConditionOperator) MatchScore {
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

func (t *LanguageType) matchSingle(condition, context string) MatchScore {
	tier, err := t.comparer.Compare(condition, context)
	if err != nil {
		return NoMatch
	}
	return tierScores[tier]
}

func (t *LanguageType) IsPotentialMatch(condition, context string) bool {
	if !t.comparer.IsWellFormed(condition) {
		return false
	}
	if _, err := t.ValidateContextValue(context); err != nil {
		return false
	}
	return t.MatchOne(condition, context, OperatorMatches) > NoMatch
}
