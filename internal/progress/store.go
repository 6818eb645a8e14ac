// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

// Package progress persists which bundles a batch run has already processed.
//
// The store is a plain text file holding one normalized bundle path per line.
// Records are appended and synced as soon as a bundle completes, so an
// interrupted run resumes without repeating finished work.
package progress

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/asazato/bndl"
)

// fileSuffix is appended to the config file stem to derive the store name.
const fileSuffix = "_progress.txt"

// Store tracks completed bundle paths across runs.
type Store struct {
	f    *os.File
	done map[string]struct{}
	path string
}

// FileName derives the progress store file name from a config file path.
// The result is a bare file name; it resolves against the working directory
// current at Open time.
func FileName(configPath string) string {
	base := filepath.Base(configPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + fileSuffix
}

// Open loads existing progress records and opens the store for appending.
func Open(path string) (*Store, error) {
	done := make(map[string]struct{})

	data, err := os.ReadFile(path) //nolint:gosec // Derived from the user-supplied config path.
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		done[bndl.NormalizePath(line)] = struct{}{}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // Derived from the user-supplied config path.
	if err != nil {
		return nil, fmt.Errorf("open progress file: %w", err)
	}

	return &Store{f: f, done: done, path: path}, nil
}

// Path returns the store file path as opened.
func (s *Store) Path() string {
	return s.path
}

// Contains reports whether the bundle path was already recorded as done.
func (s *Store) Contains(bundlePath string) bool {
	_, ok := s.done[bndl.NormalizePath(bundlePath)]
	return ok
}

// Append records one completed bundle path and syncs it to disk.
// Recording an already present path is a no-op.
func (s *Store) Append(bundlePath string) error {
	key := bndl.NormalizePath(bundlePath)
	if _, ok := s.done[key]; ok {
		return nil
	}

	if _, err := s.f.WriteString(key + "\n"); err != nil {
		return fmt.Errorf("append progress record: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync progress file: %w", err)
	}

	s.done[key] = struct{}{}
	return nil
}

// Close closes the underlying store file.
func (s *Store) Close() error {
	if s == nil || s.f == nil {
		return nil
	}

	return s.f.Close()
}
