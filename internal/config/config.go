// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides the configuration model and loader for the varres
// CLI.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/varres/varres/internal/logging"
)

// BundleConfig holds bundle-sealing settings.
type BundleConfig struct {
	// Normalize makes bundle output independent of declaration order.
	Normalize   bool   `koanf:"normalize"`
	Version     string `koanf:"version"`
	Description string `koanf:"description"`
}

// Config is the root CLI configuration.
type Config struct {
	// Profile names the predefined system configuration profile.
	Profile string `koanf:"profile" validate:"required"`
	// QualifierDefaults overrides qualifier default values by name.
	QualifierDefaults map[string]string `koanf:"qualifier_defaults"`
	Bundle            BundleConfig      `koanf:"bundle"`
	Logging           logging.Config    `koanf:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Profile: "default",
		Bundle: BundleConfig{
			Normalize: true,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration's structural constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid configuration: unknown log level %q", c.Logging.Level)
	}
	return nil
}
