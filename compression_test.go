package bndl

import (
	"bytes"
	"errors"
	"testing"

	"github.com/woozymasta/pathrules"
)

func TestCompressMatcherMatch(t *testing.T) {
	t.Parallel()

	matcher, err := newCompressMatcher(compressRules("*.txt", "atlas/**"), pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		t.Fatalf("newCompressMatcher: %v", err)
	}

	testCases := []struct {
		name string
		want bool
	}{
		{name: "notes.txt", want: true},
		{name: "DATA/README.TXT", want: true},
		{name: `data\readme.txt`, want: true},
		{name: "atlas/ui/button", want: true},
		{name: "image.tex", want: false},
		{name: "", want: false},
	}

	for _, tc := range testCases {
		if got := matcher.Match(tc.name); got != tc.want {
			t.Errorf("Match(%q)=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCompressMatcherNilIsNoMatch(t *testing.T) {
	t.Parallel()

	var matcher *compressMatcher
	if matcher.Match("a.txt") {
		t.Fatal("nil matcher must not match")
	}

	matcher, err := newCompressMatcher(nil, pathrules.MatcherOptions{})
	if err != nil {
		t.Fatalf("newCompressMatcher: %v", err)
	}
	if matcher != nil {
		t.Fatal("empty rules must yield nil matcher")
	}
}

func TestCompressMatcherIncludeExcludeRules(t *testing.T) {
	t.Parallel()

	matcher, err := newCompressMatcher(compressRules("*.txt", "!raw/**"), pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		t.Fatalf("newCompressMatcher: %v", err)
	}

	if !matcher.Match("docs/a.txt") {
		t.Fatal("docs/a.txt must be included")
	}
	if matcher.Match("raw/a.txt") {
		t.Fatal("raw/a.txt must be excluded by the later rule")
	}
}

func TestCompressMatcherInvalidRule(t *testing.T) {
	t.Parallel()

	_, err := newCompressMatcher([]pathrules.Rule{
		{
			Action:  pathrules.ActionUnknown,
			Pattern: "*.txt",
		},
	}, pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionExclude,
	})
	if !errors.Is(err, ErrInvalidCompressPattern) {
		t.Fatalf("expected ErrInvalidCompressPattern, got %v", err)
	}
}

func TestShouldCompressPolicy(t *testing.T) {
	t.Parallel()

	opts := PackOptions{
		MinCompressSize: 100,
		MaxCompressSize: 1000,
	}

	testCases := []struct {
		size int64
		want bool
	}{
		{size: 99, want: false},
		{size: 100, want: true},
		{size: 500, want: true},
		{size: 1000, want: true},
		{size: 1001, want: false},
	}

	for _, tc := range testCases {
		if got := shouldCompressBySize(opts, tc.size); got != tc.want {
			t.Errorf("shouldCompressBySize(%d)=%v, want %v", tc.size, got, tc.want)
		}
	}
}

func TestCompressionSchemeString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scheme CompressionScheme
		want   string
	}{
		{scheme: CompressionNone, want: "none"},
		{scheme: CompressionLZSS, want: "lzss"},
		{scheme: CompressionLZ4, want: "lz4"},
		{scheme: CompressionScheme(9), want: "scheme(9)"},
	}

	for _, tc := range testCases {
		if got := tc.scheme.String(); got != tc.want {
			t.Errorf("String()=%q, want %q", got, tc.want)
		}
	}
}

func TestCompressLZ4BlockRoundTrip(t *testing.T) {
	t.Parallel()

	plain := bytes.Repeat([]byte("0123456789abcdef"), 512)
	compressed, err := compressLZ4Block(plain)
	if err != nil {
		t.Fatalf("compressLZ4Block: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("repetitive data must be compressible")
	}
	if len(compressed) >= len(plain) {
		t.Fatalf("compressed %d >= plain %d", len(compressed), len(plain))
	}

	got, err := decompressLZ4Block(compressed, len(plain))
	if err != nil {
		t.Fatalf("decompressLZ4Block: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatal("lz4 round trip differs")
	}
}

func TestDecompressLZ4Block_WrongOutputLength(t *testing.T) {
	t.Parallel()

	plain := bytes.Repeat([]byte{'q'}, 2048)
	compressed, err := compressLZ4Block(plain)
	if err != nil {
		t.Fatalf("compressLZ4Block: %v", err)
	}

	if _, err := decompressLZ4Block(compressed, len(plain)+10); err == nil {
		t.Fatal("expected error for wrong declared output length")
	}
}

func TestCompressPayload_UnknownScheme(t *testing.T) {
	t.Parallel()

	_, err := compressPayload(CompressionScheme(9), []byte("x"))
	if !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("expected ErrUnknownCompression, got %v", err)
	}
}

func TestCompressionSchemeValid(t *testing.T) {
	t.Parallel()

	for _, scheme := range []CompressionScheme{CompressionNone, CompressionLZSS, CompressionLZ4} {
		if err := scheme.valid(); err != nil {
			t.Errorf("valid(%s): %v", scheme, err)
		}
	}
	if err := CompressionScheme(200).valid(); !errors.Is(err, ErrUnknownCompression) {
		t.Errorf("expected ErrUnknownCompression for unknown scheme")
	}
}
