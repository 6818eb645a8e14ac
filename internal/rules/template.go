// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package rules

import "strings"

// segment is one compiled template piece: literal text or a placeholder key.
type segment struct {
	text string
	key  string
}

// Template is a compiled path template with "{placeholder}" substitution.
// Rendering never fails: placeholders missing from the context render as
// their literal "{key}" text.
type Template struct {
	raw      string
	segments []segment
}

// CompileTemplate parses a template string. Compilation never fails;
// malformed or empty braces are kept as literal text. Placeholder keys are
// restricted to [A-Za-z0-9_].
func CompileTemplate(s string) *Template {
	t := &Template{raw: s}

	var literal strings.Builder
	for i := 0; i < len(s); {
		open := strings.IndexByte(s[i:], '{')
		if open < 0 {
			literal.WriteString(s[i:])
			break
		}

		open += i
		literal.WriteString(s[i:open])

		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			literal.WriteString(s[open:])
			break
		}

		end += open
		key := s[open+1 : end]
		if !validPlaceholderKey(key) {
			// Not a placeholder. Emit the brace and rescan from the next byte.
			literal.WriteByte('{')
			i = open + 1
			continue
		}

		if literal.Len() > 0 {
			t.segments = append(t.segments, segment{text: literal.String()})
			literal.Reset()
		}

		t.segments = append(t.segments, segment{key: key})
		i = end + 1
	}

	if literal.Len() > 0 {
		t.segments = append(t.segments, segment{text: literal.String()})
	}

	return t
}

// Raw returns the source template string.
func (t *Template) Raw() string {
	return t.raw
}

// Render substitutes context values into the template.
// Keys absent from the context render as literal "{key}" text.
func (t *Template) Render(ctx map[string]string) string {
	var b strings.Builder
	b.Grow(len(t.raw))

	for _, seg := range t.segments {
		if seg.key == "" {
			b.WriteString(seg.text)
			continue
		}

		if v, ok := ctx[seg.key]; ok {
			b.WriteString(v)
			continue
		}

		b.WriteByte('{')
		b.WriteString(seg.key)
		b.WriteByte('}')
	}

	return b.String()
}

// validPlaceholderKey reports whether key is a non-empty [A-Za-z0-9_]+ token.
func validPlaceholderKey(key string) bool {
	if key == "" {
		return false
	}

	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case 'a' <= c && c <= 'z':
		case 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
		case c == '_':
		default:
			return false
		}
	}

	return true
}
