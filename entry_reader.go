// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/woozymasta/lzss"
)

// maxLZ4BlockSize caps the decoded size of a single LZ4 block entry.
const maxLZ4BlockSize = 1 << 30

// nopCloser wraps a reader and provides a no-op close.
type nopCloser struct {
	io.Reader
}

// Close closes nopCloser (no-op).
func (nopCloser) Close() error {
	return nil
}

// findEntryByID resolves one entry by path id.
func (r *Reader) findEntryByID(id int64) *EntryInfo {
	i, ok := r.byID[id]
	if !ok {
		return nil
	}

	return &r.entries[i]
}

// openEntryByInfo opens payload stream for already resolved entry metadata.
func (r *Reader) openEntryByInfo(info *EntryInfo, id int64) (io.ReadCloser, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: path id %d", ErrEntryNotFound, id)
	}

	sr := io.NewSectionReader(r.ra, int64(info.Offset), int64(info.DataSize))
	if !info.IsCompressed() {
		return nopCloser{Reader: sr}, nil
	}

	if info.OriginalSize == 0 && info.DataSize != 0 {
		return nil, fmt.Errorf("%w: path id %d compressed without original size", ErrInvalidPayload, id)
	}

	outLen, err := checkedUint64ToInt(info.OriginalSize)
	if err != nil {
		return nil, fmt.Errorf("resolve output size for path id %d: %w", id, err)
	}

	switch info.Compression {
	case CompressionLZSS:
		pr, pw := io.Pipe()
		go streamDecompressEntry(id, pw, sr, outLen)

		return pr, nil
	case CompressionLZ4:
		out, err := readLZ4Entry(sr, info.DataSize, outLen)
		if err != nil {
			return nil, fmt.Errorf("decompress entry path id %d: %w", id, err)
		}

		return nopCloser{Reader: bytes.NewReader(out)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, info.Compression)
	}
}

// OpenEntry opens an entry for reading by path id.
// Returned stream yields decompressed content for compressed entries.
func (r *Reader) OpenEntry(pathID int64) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	return r.openEntryByInfo(r.findEntryByID(pathID), pathID)
}

// OpenEntryInfo opens entry stream by already resolved metadata.
// Returned stream yields decompressed content for compressed entries.
func (r *Reader) OpenEntryInfo(info EntryInfo) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	return r.openEntryByInfo(&info, info.PathID)
}

// ReadEntry reads full (decompressed) content of the entry with the given path id.
func (r *Reader) ReadEntry(pathID int64) ([]byte, error) {
	rc, err := r.OpenEntry(pathID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

// readEntryPayload reads full decompressed payload for resolved entry metadata.
func (r *Reader) readEntryPayload(info EntryInfo) ([]byte, error) {
	rc, err := r.OpenEntryInfo(info)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

// readLZ4Entry reads one stored LZ4 block fully and decodes it.
func readLZ4Entry(src io.Reader, dataSize uint64, outLen int) ([]byte, error) {
	if outLen > maxLZ4BlockSize {
		return nil, fmt.Errorf("%w: lz4 block output %d", ErrSizeOverflow, outLen)
	}

	blockLen, err := checkedUint64ToInt(dataSize)
	if err != nil {
		return nil, err
	}

	block := make([]byte, blockLen)
	if _, err := io.ReadFull(src, block); err != nil {
		return nil, fmt.Errorf("read lz4 block: %w", err)
	}

	return decompressLZ4Block(block, outLen)
}

// streamDecompressEntry decodes one compressed entry stream into pipe writer.
func streamDecompressEntry(id int64, dst *io.PipeWriter, src io.Reader, outLen int) {
	_, err := lzss.DecompressToWriter(dst, src, outLen, nil)
	if err != nil {
		_ = dst.CloseWithError(fmt.Errorf("decompress entry path id %d: %w", id, err))
		return
	}

	_ = dst.Close()
}

// checkedUint64ToInt converts uint64 to int with platform-safe overflow check.
func checkedUint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, ErrSizeOverflow
	}

	return int(v), nil
}
