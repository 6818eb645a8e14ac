// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// maxSanitizedSegmentLen limits one path segment to common filesystem-safe length.
const maxSanitizedSegmentLen = 240

// reservedDeviceNames contains case-insensitive reserved DOS/Windows device names.
var reservedDeviceNames = map[string]struct{}{
	"aux":  {},
	"con":  {},
	"nul":  {},
	"prn":  {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// SanitizeOutputPath validates and rewrites one rendered destination path to a
// deterministic filesystem-safe relative slash-separated form.
// Paths that would escape the destination root (absolute, drive-prefixed or
// containing "..") are rejected with ErrInvalidOutputPath.
func SanitizeOutputPath(raw string) (string, error) {
	candidate := strings.TrimSpace(strings.ReplaceAll(raw, `\`, `/`))
	if candidate == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidOutputPath)
	}
	if strings.ContainsRune(candidate, 0) {
		return "", fmt.Errorf("%w: NUL byte in path", ErrInvalidOutputPath)
	}
	if strings.HasPrefix(candidate, "/") {
		return "", fmt.Errorf("%w: absolute path %q", ErrInvalidOutputPath, raw)
	}
	if hasDrivePrefix(candidate) {
		return "", fmt.Errorf("%w: drive-prefixed path %q", ErrInvalidOutputPath, raw)
	}

	parts := strings.Split(candidate, "/")
	sanitized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			return "", fmt.Errorf("%w: traversal in path %q", ErrInvalidOutputPath, raw)
		}

		sanitized = append(sanitized, sanitizePathSegment(part))
	}

	if len(sanitized) == 0 {
		return "", fmt.Errorf("%w: empty path", ErrInvalidOutputPath)
	}

	return strings.Join(sanitized, "/"), nil
}

// sanitizePathSegment rewrites one path segment for broad filesystem compatibility.
func sanitizePathSegment(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if isUnsafeControlCharRune(r) || strings.ContainsRune(`<>:"|?*`, r) {
			b.WriteRune('_')
			continue
		}

		b.WriteRune(r)
	}

	sanitized := strings.TrimRight(b.String(), ". ")
	if sanitized == "" {
		sanitized = "_"
	}

	if isReservedDeviceName(sanitized) {
		sanitized = "_" + sanitized
	}

	if len(sanitized) > maxSanitizedSegmentLen {
		sanitized = shortenSegmentDeterministic(sanitized, maxSanitizedSegmentLen)
	}

	return sanitized
}

// isUnsafeControlCharRune reports whether rune is unsafe for file names.
func isUnsafeControlCharRune(r rune) bool {
	if unicode.IsControl(r) || unicode.In(r, unicode.Cf) {
		return true
	}

	// U+FFFD often appears from invalid byte sequences in damaged names.
	return r == '�'
}

// hasDrivePrefix reports whether path starts with a Windows drive letter.
func hasDrivePrefix(p string) bool {
	return len(p) >= 2 && p[1] == ':' &&
		(('a' <= p[0] && p[0] <= 'z') || ('A' <= p[0] && p[0] <= 'Z'))
}

// isReservedDeviceName reports whether name matches a reserved device identifier.
func isReservedDeviceName(name string) bool {
	candidate := strings.ToLower(strings.TrimRight(name, ". "))
	if dot := strings.IndexByte(candidate, '.'); dot >= 0 {
		candidate = candidate[:dot]
	}
	if candidate == "" {
		return false
	}

	_, ok := reservedDeviceNames[candidate]
	return ok
}

// shortenSegmentDeterministic shortens a long segment while preserving deterministic identity suffix.
func shortenSegmentDeterministic(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	if maxLen <= 10 {
		return value[:maxLen]
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(value))
	hashPart := fmt.Sprintf("~%08x", h.Sum32())
	prefixLen := max(maxLen-len(hashPart), 1)

	return value[:prefixLen] + hashPart
}
