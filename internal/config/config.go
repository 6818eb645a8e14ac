// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

// Package config loads and validates batch extraction configuration files.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Target type names accepted in extraction rule definitions.
const (
	TypeSprite    = "sprite"
	TypeTexture2D = "texture2d"
	TypeText      = "text"
)

// Target defines one extraction rule: which item kind it applies to, how to
// render the candidate path, and how to rewrite it into a destination path.
type Target struct {
	// Type selects the item kind this rule applies to.
	Type string `mapstructure:"type"`
	// Template is the candidate path pattern with {placeholder} segments.
	Template string `mapstructure:"template"`
	// Match is the regular expression applied to the rendered template.
	Match string `mapstructure:"match"`
	// Dest is the regex replacement producing the destination relative path.
	// Capture group references ($1, ${name}) expand from Match.
	Dest string `mapstructure:"dest"`
}

// Config is one batch extraction run definition.
type Config struct {
	// Src is the glob pattern selecting bundle files to process.
	Src string `mapstructure:"src"`
	// Dest is the output root directory for extracted items.
	Dest string `mapstructure:"dest"`
	// Targets lists extraction rules evaluated in order for every item.
	Targets []Target `mapstructure:"targets"`
}

// Load reads and validates a TOML config file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks config invariants shared by Load and direct construction.
func (c *Config) Validate() error {
	if c.Src == "" {
		return fmt.Errorf("src is required")
	}
	if c.Dest == "" {
		return fmt.Errorf("dest is required")
	}

	for i := range c.Targets {
		if err := c.Targets[i].validate(); err != nil {
			return fmt.Errorf("target %d: %w", i, err)
		}
	}

	return nil
}

// validate checks one extraction rule definition.
func (t *Target) validate() error {
	switch t.Type {
	case TypeSprite, TypeTexture2D, TypeText:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown type %q", t.Type)
	}

	if t.Template == "" {
		return fmt.Errorf("template is required")
	}
	if t.Match == "" {
		return fmt.Errorf("match is required")
	}

	// Dest may be empty: replacing the match with nothing is a valid rewrite.
	return nil
}
