// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import "testing"

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "data/bundles/a.bndl", want: "data/bundles/a.bndl"},
		{name: "backslashes", in: `data\bundles\a.bndl`, want: "data/bundles/a.bndl"},
		{name: "dot-slash prefix", in: "./data/a.bndl", want: "data/a.bndl"},
		{name: "leading slash", in: "/data/a.bndl", want: "data/a.bndl"},
		{name: "inner dot segments", in: "data/./sub/a.bndl", want: "data/sub/a.bndl"},
		{name: "double slashes", in: "data//a.bndl", want: "data/a.bndl"},
		{name: "surrounding spaces", in: "  data/a.bndl  ", want: "data/a.bndl"},
		{name: "trailing slash", in: "data/bundles/", want: "data/bundles"},
		{name: "bare dot", in: ".", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizePath(tc.in); got != tc.want {
				t.Fatalf("NormalizePath(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizePath_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`a\b\c`, "./a/b", "a//b/./c/"} {
		once := NormalizePath(in)
		if twice := NormalizePath(once); twice != once {
			t.Fatalf("NormalizePath not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
