// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // Trailer format requires SHA1.
	"fmt"
	"io"
	"os"
)

// sha1TrailerSize is the full trailer length: null prefix plus hash bytes.
const sha1TrailerSize = shaSize + 1

// VerifyTrailer recomputes the SHA1 of all bundle content preceding the
// trailer and compares it to the stored hash.
// Returns ErrTrailerMissing when the bundle carries no trailer.
func (r *Reader) VerifyTrailer() error {
	if r == nil || r.ra == nil {
		return ErrNilReader
	}

	if !r.hasTrailer {
		return ErrTrailerMissing
	}

	sum, err := hashPrefixSHA1(r.ra, r.size-sha1TrailerSize)
	if err != nil {
		return fmt.Errorf("hash content: %w", err)
	}

	if !bytes.Equal(sum, r.sha1Trailer[:]) {
		return ErrTrailerHashMismatch
	}

	return nil
}

// writeSHA1Trailer appends SHA1 trailer (0x00 + 20-byte hash) to the file.
// The hash is computed over all content up to (but not including) the trailer.
// If the file already ends with a valid trailer, it is replaced in place.
func writeSHA1Trailer(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open for trailer: %w", err)
	}
	defer func() { _ = f.Close() }()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek end: %w", err)
	}

	toHash := size
	writePos := size
	var sum []byte

	if size >= sha1TrailerSize {
		tail := make([]byte, sha1TrailerSize)
		if _, err := f.ReadAt(tail, size-sha1TrailerSize); err == nil && tail[0] == 0x00 {
			candidate := size - sha1TrailerSize
			candidateSum, err := hashPrefixSHA1(f, candidate)
			if err != nil {
				return fmt.Errorf("hash trailer candidate: %w", err)
			}

			if bytes.Equal(candidateSum, tail[1:]) {
				toHash = candidate
				writePos = candidate
				sum = candidateSum
			}
		}
	}

	if sum == nil {
		computedSum, err := hashPrefixSHA1(f, toHash)
		if err != nil {
			return fmt.Errorf("hash content: %w", err)
		}

		sum = computedSum
		writePos = size
	}

	if _, err := f.Seek(writePos, io.SeekStart); err != nil {
		return fmt.Errorf("seek for trailer write: %w", err)
	}

	if _, err := f.Write([]byte{0x00}); err != nil {
		return fmt.Errorf("write trailer null: %w", err)
	}
	if _, err := f.Write(sum); err != nil {
		return fmt.Errorf("write trailer hash: %w", err)
	}

	return f.Sync()
}

// hashPrefixSHA1 calculates SHA1 over the first n bytes of the source.
func hashPrefixSHA1(ra io.ReaderAt, n int64) ([]byte, error) {
	h := sha1.New() //nolint:gosec // Trailer format requires SHA1.
	if _, err := io.Copy(h, io.NewSectionReader(ra, 0, n)); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}
