// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/woozymasta/lzss"
	"github.com/woozymasta/pathrules"
)

// CompressionScheme identifies the stored payload compression of one entry.
type CompressionScheme uint8

// Supported compression schemes.
const (
	// CompressionNone stores the payload verbatim.
	CompressionNone CompressionScheme = iota
	// CompressionLZSS stores an LZSS stream decodable with a known output length.
	CompressionLZSS
	// CompressionLZ4 stores a single LZ4 block decodable with a known output length.
	CompressionLZ4
)

// String returns the scheme name used in diagnostics.
func (c CompressionScheme) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZSS:
		return "lzss"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(c))
	}
}

// valid returns nil iff the scheme is known to this package.
func (c CompressionScheme) valid() error {
	switch c {
	case CompressionNone, CompressionLZSS, CompressionLZ4:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}

// compressMatcher holds compiled allow-list rules for compression.
type compressMatcher struct {
	matcher *pathrules.Matcher
}

// newCompressMatcher compiles compression name rules.
func newCompressMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*compressMatcher, error) {
	rules = normalizeCompressRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidCompressPattern, err)
	}

	return &compressMatcher{matcher: matcher}, nil
}

// normalizeCompressRules normalizes rule patterns and drops empty patterns.
func normalizeCompressRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether an item name is included by at least one compress rule.
func (m *compressMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := NormalizePath(name)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// shouldCompressBySize reports whether payload size fits compression boundaries.
func shouldCompressBySize(opts PackOptions, size int64) bool {
	if size > opts.MaxCompressSize || size < opts.MinCompressSize {
		return false
	}

	return true
}

// compressPayload compresses data with the selected scheme.
// An empty result means the payload is incompressible and must be stored raw.
func compressPayload(scheme CompressionScheme, data []byte) ([]byte, error) {
	switch scheme {
	case CompressionLZSS:
		return lzss.Compress(data, lzss.DefaultCompressOptions())
	case CompressionLZ4:
		return compressLZ4Block(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, scheme)
	}
}

// compressLZ4Block compresses data into a single LZ4 block.
func compressLZ4Block(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))

	var c lz4.Compressor
	n, err := c.CompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress block: %w", err)
	}

	// Zero means the block is incompressible.
	return buf[:n], nil
}

// decompressLZ4Block decodes a single LZ4 block with a known output length.
func decompressLZ4Block(data []byte, outLen int) ([]byte, error) {
	out := make([]byte, outLen)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 uncompress block: %w", err)
	}
	if n != outLen {
		return nil, fmt.Errorf("lz4 uncompress block: short output (%d/%d)", n, outLen)
	}

	return out, nil
}
