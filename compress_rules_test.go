package bndl

import (
	"strings"

	"github.com/woozymasta/pathrules"
)

// compressRules builds matcher rules from raw patterns for concise test
// setup. A leading "!" marks the pattern as an exclude rule.
func compressRules(patterns ...string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		rule := pathrules.Rule{Action: pathrules.ActionInclude, Pattern: pattern}
		if rest, ok := strings.CutPrefix(pattern, "!"); ok {
			rule = pathrules.Rule{Action: pathrules.ActionExclude, Pattern: rest}
		}

		rules = append(rules, rule)
	}

	return rules
}
