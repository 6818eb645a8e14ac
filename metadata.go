// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"fmt"
	"io"
	"os"
)

// ListEntries opens a BNDL file and returns entry metadata without payload reads.
func ListEntries(path string) ([]EntryInfo, error) {
	return ListEntriesWithOptions(path, ReaderOptions{})
}

// ListEntriesWithOptions opens a BNDL file and returns entry metadata without payload reads using reader options.
func ListEntriesWithOptions(path string, opts ReaderOptions) ([]EntryInfo, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ListEntriesFromReaderAtWithOptions(f, size, opts)
}

// ListEntriesFromReaderAt parses entry metadata from a random-access source.
func ListEntriesFromReaderAt(ra io.ReaderAt, size int64) ([]EntryInfo, error) {
	return ListEntriesFromReaderAtWithOptions(ra, size, ReaderOptions{})
}

// ListEntriesFromReaderAtWithOptions parses entry metadata from a random-access source using reader options.
func ListEntriesFromReaderAtWithOptions(ra io.ReaderAt, size int64, opts ReaderOptions) ([]EntryInfo, error) {
	if ra == nil {
		return nil, ErrNilReader
	}
	if size < headerSize {
		return nil, fmt.Errorf("%w: short header", ErrInvalidHeader)
	}

	r, err := NewReaderFromReaderAtWithOptions(ra, size, opts)
	if err != nil {
		return nil, err
	}

	return r.entries, nil
}

// openFileWithSize opens a file and returns a handle plus current size.
func openFileWithSize(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open bundle: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat: %w", err)
	}

	return f, fi.Size(), nil
}
