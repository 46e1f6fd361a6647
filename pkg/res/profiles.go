// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"

	"github.com/varres/varres/pkg/qualifier"
)

// Predefined configuration profiles.
const (
	ProfileDefault           = "default"
	ProfileLanguagePriority  = "language-priority"
	ProfileTerritoryPriority = "territory-priority"
	ProfileExtendedExample   = "extended-example"
)

func baseQualifierTypes() []QualifierTypeDecl {
	return []QualifierTypeDecl{
		{Name: "language", SystemType: qualifier.SystemTypeLanguage, AllowContextList: true},
		{Name: "territory", SystemType: qualifier.SystemTypeTerritory},
		{Name: "literal", SystemType: qualifier.SystemTypeLiteral},
		{Name: "literalList", SystemType: qualifier.SystemTypeLiteral, AllowContextList: true},
	}
}

func baseResourceTypes() []ResourceTypeDecl {
	return []ResourceTypeDecl{{Key: "json"}, {Key: "string"}}
}

// Profile returns the declaration of a predefined profile.
func Profile(name string) (SystemConfigurationDecl, error) {
	switch name {
	case ProfileDefault:
		return SystemConfigurationDecl{
			QualifierTypes: baseQualifierTypes(),
			Qualifiers: []QualifierDecl{
				{Name: "language", TypeName: "language", DefaultPriority: 700, Token: "lang", TokenIsOptional: true},
				{Name: "currentTerritory", TypeName: "territory", DefaultPriority: 600, Token: "territory"},
			},
			ResourceTypes: baseResourceTypes(),
		}, nil
	case ProfileLanguagePriority:
		return SystemConfigurationDecl{
			QualifierTypes: baseQualifierTypes(),
			Qualifiers: []QualifierDecl{
				{Name: "language", TypeName: "language", DefaultPriority: 900, Token: "lang", TokenIsOptional: true},
				{Name: "currentTerritory", TypeName: "territory", DefaultPriority: 400, Token: "territory"},
			},
			ResourceTypes: baseResourceTypes(),
		}, nil
	case ProfileTerritoryPriority:
		return SystemConfigurationDecl{
			QualifierTypes: baseQualifierTypes(),
			Qualifiers: []QualifierDecl{
				{Name: "currentTerritory", TypeName: "territory", DefaultPriority: 900, Token: "territory"},
				{Name: "language", TypeName: "language", DefaultPriority: 400, Token: "lang", TokenIsOptional: true},
			},
			ResourceTypes: baseResourceTypes(),
		}, nil
	case ProfileExtendedExample:
		return SystemConfigurationDecl{
			QualifierTypes: append(baseQualifierTypes(),
				QualifierTypeDecl{
					Name:       "environment",
					SystemType: qualifier.SystemTypeLiteral,
					Configuration: qualifier.LiteralConfig{
						Values: []string{"dev", "test", "staging", "prod"},
					},
				},
			),
			Qualifiers: []QualifierDecl{
				{Name: "language", TypeName: "language", DefaultPriority: 850, Token: "lang", TokenIsOptional: true},
				{Name: "currentTerritory", TypeName: "territory", DefaultPriority: 700, Token: "territory"},
				{Name: "homeTerritory", TypeName: "territory", DefaultPriority: 600},
				{Name: "platform", TypeName: "literal", DefaultPriority: 500},
				{Name: "env", TypeName: "environment", DefaultPriority: 400, DefaultValue: "prod"},
				{Name: "role", TypeName: "literalList", DefaultPriority: 300},
				{Name: "build", TypeName: "literal", DefaultPriority: 200, Token: "build", TokenIsOptional: true},
			},
			ResourceTypes: baseResourceTypes(),
		}, nil
	default:
		return SystemConfigurationDecl{}, fmt.Errorf("%s: unknown profile", name)
	}
}

// NewProfile instantiates a predefined profile, optionally overriding
// qualifier default values.
func NewProfile(name string, registry *qualifier.Registry, defaults map[string]string) (*SystemConfiguration, error) {
	decl, err := Profile(name)
	if err != nil {
		return nil, err
	}
	return NewSystemConfiguration(decl, registry, defaults)
}
