// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package qualifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Factory builds a Type instance from a name, the context-list flag and a
// JSON-compatible configuration blob.
type Factory func(name string, allowContextList bool, config any) (Type, error)

// Registry maps system-type tags to factories. The zero value is unusable;
// construct with NewRegistry, which pre-registers the built-in kinds.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with literal, language and territory
// registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories[SystemTypeLiteral] = func(name string, allowContextList bool, config any) (Type, error) {
		var cfg LiteralConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, err
		}
		return NewLiteralType(name, allowContextList, cfg)
	}
	r.factories[SystemTypeLanguage] = func(name string, allowContextList bool, config any) (Type, error) {
		var cfg LanguageConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, err
		}
		return NewLanguageType(name, allowContextList, cfg, nil), nil
	}
	r.factories[SystemTypeTerritory] = func(name string, allowContextList bool, config any) (Type, error) {
		var cfg TerritoryConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, err
		}
		return NewTerritoryType(name, allowContextList, cfg, nil), nil
	}
	return r
}

// Register adds a user-defined kind. Re-registering an existing tag is an
// error so bundles cannot silently change semantics.
func (r *Registry) Register(systemType string, factory Factory) error {
	if _, exists := r.factories[systemType]; exists {
		return fmt.Errorf("%s: system type already registered", systemType)
	}
	r.factories[systemType] = factory
	return nil
}

// New instantiates a type of the given kind.
func (r *Registry) New(systemType, name string, allowContextList bool, config any) (Type, error) {
	factory, ok := r.factories[systemType]
	if !ok {
		return nil, fmt.Errorf("%s: unknown system type", systemType)
	}
	t, err := factory(name, allowContextList, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// ValidateConfig checks a configuration blob by instantiating it.
func (r *Registry) ValidateConfig(systemType string, config any) error {
	_, err := r.New(systemType, "config-check", false, config)
	return err
}

// SystemTypes lists the registered kind tags in sorted order.
func (r *Registry) SystemTypes() []string {
	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// decodeConfig round-trips a JSON-compatible blob into a typed config
// struct, rejecting unknown fields.
func decodeConfig(config any, out any) error {
	if config == nil {
		return nil
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
