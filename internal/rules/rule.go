// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

// Package rules compiles extraction rule definitions and derives destination
// paths for classified bundle items.
package rules

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/asazato/bndl"
	"github.com/asazato/bndl/internal/config"
)

// Kind is the item kind an extraction rule can target.
type Kind uint8

// Rule target kinds.
const (
	KindUnknown Kind = iota
	KindSprite
	KindTexture2D
	KindText
)

// ParseKind resolves a config type name into a rule kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case config.TypeSprite:
		return KindSprite, nil
	case config.TypeTexture2D:
		return KindTexture2D, nil
	case config.TypeText:
		return KindText, nil
	default:
		return KindUnknown, fmt.Errorf("unknown type %q", s)
	}
}

// String returns the config type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSprite:
		return config.TypeSprite
	case KindTexture2D:
		return config.TypeTexture2D
	case KindText:
		return config.TypeText
	default:
		return "unknown"
	}
}

// Rule is one compiled extraction rule.
type Rule struct {
	// Template renders the candidate path from a placeholder context.
	Template *Template
	// Match gates the rule and provides capture groups for Replacement.
	Match *regexp.Regexp
	// Replacement is the regex replacement producing a relative output path.
	Replacement string
	// Kind is the item kind this rule applies to.
	Kind Kind
}

// Engine holds compiled extraction rules and the destination root.
type Engine struct {
	destRoot string
	rules    []Rule
}

// NewEngine compiles config targets into rules.
// A template never fails to compile; a regex compile failure fails the whole
// engine since it means the run is misconfigured.
func NewEngine(destRoot string, targets []config.Target) (*Engine, error) {
	compiled := make([]Rule, 0, len(targets))
	for i := range targets {
		t := &targets[i]

		kind, err := ParseKind(t.Type)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}

		re, err := regexp.Compile(t.Match)
		if err != nil {
			return nil, fmt.Errorf("target %d: compile match %q: %w", i, t.Match, err)
		}

		compiled = append(compiled, Rule{
			Kind:        kind,
			Template:    CompileTemplate(t.Template),
			Match:       re,
			Replacement: t.Dest,
		})
	}

	return &Engine{destRoot: destRoot, rules: compiled}, nil
}

// Rules returns the compiled rules in config order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// DestRoot returns the configured destination root directory.
func (e *Engine) DestRoot() string {
	return e.destRoot
}

// Apply runs one rule against a classified item's placeholder context.
// ok is false when the rule does not apply to this item (kind mismatch or
// match failure), which is a normal outcome, not an error. When the rule
// applies, the first regex match in the rendered template is replaced by
// Replacement with capture expansion, and the result is sanitized and
// joined under the destination root.
func (e *Engine) Apply(r Rule, kind Kind, ctx map[string]string) (string, bool, error) {
	if r.Kind != kind {
		return "", false, nil
	}

	rendered := r.Template.Render(ctx)
	loc := r.Match.FindStringSubmatchIndex(rendered)
	if loc == nil {
		return "", false, nil
	}

	expanded := r.Match.ExpandString(nil, r.Replacement, rendered, loc)
	rel := rendered[:loc[0]] + string(expanded) + rendered[loc[1]:]

	sanitized, err := bndl.SanitizeOutputPath(rel)
	if err != nil {
		return "", true, fmt.Errorf("rule output %q: %w", rel, err)
	}

	return filepath.Join(e.destRoot, filepath.FromSlash(sanitized)), true, nil
}
