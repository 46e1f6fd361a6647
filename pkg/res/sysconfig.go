// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"fmt"

	"github.com/varres/varres/pkg/qualifier"
)

// QualifierTypeDecl declares a qualifier type instance in a system
// configuration.
type QualifierTypeDecl struct {
	Name             string `json:"name"`
	SystemType       string `json:"systemType"`
	AllowContextList bool   `json:"allowContextList,omitempty"`
	Configuration    any    `json:"configuration,omitempty"`
}

// QualifierDecl declares a named qualifier bound to a type.
type QualifierDecl struct {
	Name            string             `json:"name"`
	TypeName        string             `json:"typeName"`
	DefaultPriority qualifier.Priority `json:"defaultPriority"`
	Token           string             `json:"token,omitempty"`
	TokenIsOptional bool               `json:"tokenIsOptional,omitempty"`
	DefaultValue    string             `json:"defaultValue,omitempty"`
}

// ResourceTypeDecl declares a resource type.
type ResourceTypeDecl struct {
	Key string `json:"key"`
}

// SystemConfigurationDecl is the declarative form of a system configuration,
// as embedded in bundles.
type SystemConfigurationDecl struct {
	QualifierTypes []QualifierTypeDecl `json:"qualifierTypes"`
	Qualifiers     []QualifierDecl     `json:"qualifiers"`
	ResourceTypes  []ResourceTypeDecl  `json:"resourceTypes"`
}

// SystemConfiguration is an instantiated configuration: type instances built
// through a registry and qualifiers bound to them. It is immutable once
// constructed.
type SystemConfiguration struct {
	decl             SystemConfigurationDecl
	types            []qualifier.Type
	typesByName      map[string]qualifier.Type
	qualifiers       []*qualifier.Qualifier
	qualifiersByName map[string]*qualifier.Qualifier
	qualifiersByTok  map[string]*qualifier.Qualifier
	resourceTypes    []string
	resourceTypeSet  map[string]struct{}
}

// NewSystemConfiguration instantiates decl through registry. defaults, when
// non-nil, overrides the declared qualifier default values by qualifier
// name; an override for an unknown qualifier is an error.
func NewSystemConfiguration(decl SystemConfigurationDecl, registry *qualifier.Registry, defaults map[string]string) (*SystemConfiguration, error) {
	if registry == nil {
		registry = qualifier.NewRegistry()
	}
	cfg := &SystemConfiguration{
		decl:             decl,
		typesByName:      make(map[string]qualifier.Type, len(decl.QualifierTypes)),
		qualifiersByName: make(map[string]*qualifier.Qualifier, len(decl.Qualifiers)),
		qualifiersByTok:  make(map[string]*qualifier.Qualifier),
		resourceTypeSet:  make(map[string]struct{}, len(decl.ResourceTypes)),
	}

	for _, td := range decl.QualifierTypes {
		if _, dup := cfg.typesByName[td.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate qualifier type", td.Name)
		}
		t, err := registry.New(td.SystemType, td.Name, td.AllowContextList, td.Configuration)
		if err != nil {
			return nil, err
		}
		cfg.types = append(cfg.types, t)
		cfg.typesByName[td.Name] = t
	}

	overridden := make(map[string]struct{}, len(defaults))
	for _, qd := range decl.Qualifiers {
		if _, dup := cfg.qualifiersByName[qd.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate qualifier", qd.Name)
		}
		t, ok := cfg.typesByName[qd.TypeName]
		if !ok {
			return nil, fmt.Errorf("%s: unknown qualifier type %q", qd.Name, qd.TypeName)
		}
		defaultValue := qd.DefaultValue
		if v, ok := defaults[qd.Name]; ok {
			defaultValue = v
			overridden[qd.Name] = struct{}{}
		}
		q := &qualifier.Qualifier{
			Name:            qd.Name,
			Type:            t,
			DefaultPriority: qd.DefaultPriority,
			Token:           qd.Token,
			TokenIsOptional: qd.TokenIsOptional,
			DefaultValue:    defaultValue,
		}
		if err := q.Validate(); err != nil {
			return nil, err
		}
		cfg.qualifiers = append(cfg.qualifiers, q)
		cfg.qualifiersByName[qd.Name] = q
		if qd.Token != "" {
			if _, dup := cfg.qualifiersByTok[qd.Token]; dup {
				return nil, fmt.Errorf("%s: duplicate qualifier token", qd.Token)
			}
			cfg.qualifiersByTok[qd.Token] = q
		}
	}
	for name := range defaults {
		if _, ok := overridden[name]; !ok {
			return nil, fmt.Errorf("%s: default value override for unknown qualifier", name)
		}
	}

	for _, rt := range decl.ResourceTypes {
		if _, dup := cfg.resourceTypeSet[rt.Key]; dup {
			return nil, fmt.Errorf("%s: duplicate resource type", rt.Key)
		}
		cfg.resourceTypes = append(cfg.resourceTypes, rt.Key)
		cfg.resourceTypeSet[rt.Key] = struct{}{}
	}
	return cfg, nil
}

// Decl returns the declarative form this configuration was built from, with
// any default value overrides applied.
func (c *SystemConfiguration) Decl() SystemConfigurationDecl {
	decl := c.decl
	decl.Qualifiers = make([]QualifierDecl, len(c.decl.Qualifiers))
	copy(decl.Qualifiers, c.decl.Qualifiers)
	for i := range decl.Qualifiers {
		decl.Qualifiers[i].DefaultValue = c.qualifiers[i].DefaultValue
	}
	return decl
}

// Qualifier looks a qualifier up by name or token alias.
func (c *SystemConfiguration) Qualifier(name string) (*qualifier.Qualifier, bool) {
	if q, ok := c.qualifiersByName[name]; ok {
		return q, true
	}
	q, ok := c.qualifiersByTok[name]
	return q, ok
}

// Qualifiers returns the configured qualifiers in declaration order.
func (c *SystemConfiguration) Qualifiers() []*qualifier.Qualifier {
	return c.qualifiers
}

// Types returns the configured type instances in declaration order.
func (c *SystemConfiguration) Types() []qualifier.Type {
	return c.types
}

// HasResourceType reports whether name is a declared resource type.
func (c *SystemConfiguration) HasResourceType(name string) bool {
	_, ok := c.resourceTypeSet[name]
	return ok
}

// ResourceTypes returns the declared resource type keys in order.
func (c *SystemConfiguration) ResourceTypes() []string {
	return c.resourceTypes
}

// DefaultContext builds the context seeded by qualifier default values.
func (c *SystemConfiguration) DefaultContext() Context {
	ctx := make(Context)
	for _, q := range c.qualifiers {
		if q.DefaultValue != "" {
			ctx[q.Name] = q.DefaultValue
		}
	}
	return ctx
}
