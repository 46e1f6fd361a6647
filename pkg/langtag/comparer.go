// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package langtag

// RegionContainment is the subset of region knowledge the comparer needs to
// classify macro-region matches. pkg/region's provider satisfies it.
type RegionContainment interface {
	Contains(container, member string) bool
}

// preferredRegions maps a primary language subtag to the region treated as
// its preferred concrete region.
var preferredRegions = map[string]string{
	"en": "US",
	"fr": "FR",
	"de": "DE",
	"es": "ES",
	"it": "IT",
	"pt": "BR",
	"nl": "NL",
	"ja": "JP",
	"ko": "KR",
	"zh": "CN",
	"ru": "RU",
	"ar": "EG",
}

// SubtagComparer is the built-in Comparer. It classifies similarity from the
// primary, script and region subtags alone.
type SubtagComparer struct {
	regions RegionContainment
}

// NewSubtagComparer returns a comparer backed by the given region
// containment source. regions may be nil, in which case no pair classifies
// as macro-region; such pairs fall through to the preferred-region and
// sibling checks.
func NewSubtagComparer(regions RegionContainment) *SubtagComparer {
	return &SubtagComparer{regions: regions}
}

func (c *SubtagComparer) IsWellFormed(tag string) bool {
	_, err := Parse(tag)
	return err == nil
}

// Compare classifies condition against context.
//
// Classification order: exact, undetermined, primary/script mismatch,
// neutral region, macro-region containment, preferred region, sibling.
func (c *SubtagComparer) Compare(condition, context string) (Tier, error) {
	cond, err := Parse(condition)
	if err != nil {
		return TierNone, err
	}
	ctx, err := Parse(context)
	if err != nil {
		return TierNone, err
	}

	if cond == ctx {
		return TierExact, nil
	}
	if cond.Primary == Undetermined || ctx.Primary == Undetermined {
		return TierUndetermined, nil
	}
	if cond.Primary != ctx.Primary {
		return TierNone, nil
	}
	if cond.Script != "" && ctx.Script != "" && cond.Script != ctx.Script {
		return TierNone, nil
	}
	if cond.Region == ctx.Region {
		return TierExact, nil
	}
	if cond.Region == "" || ctx.Region == "" {
		return TierNeutralRegion, nil
	}
	if c.regions != nil {
		if c.regions.Contains(cond.Region, ctx.Region) || c.regions.Contains(ctx.Region, cond.Region) {
			return TierMacroRegion, nil
		}
	}
	if preferred, ok := preferredRegions[cond.Primary]; ok {
		if cond.Region == preferred || ctx.Region == preferred {
			return TierPreferredRegion, nil
		}
	}
	return TierSibling, nil
}
