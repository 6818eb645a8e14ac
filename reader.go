// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// tocReaderBufferSize is a sequential read buffer for entry table parsing.
const tocReaderBufferSize = 64 * 1024

var (
	// tocReaderPool reuses buffered readers for sequential table parsing.
	tocReaderPool = sync.Pool{
		New: func() any {
			return bufio.NewReaderSize(bytes.NewReader(nil), tocReaderBufferSize)
		},
	}
)

// Reader provides read-only access to a parsed BNDL bundle.
type Reader struct {
	// ra is the underlying random-access reader used for payload reads.
	ra io.ReaderAt
	// file is set when Reader owns an *os.File opened via Open.
	file *os.File
	// entries stores parsed immutable entry metadata in TOC order.
	entries []EntryInfo
	// byID maps path id to entries index for constant-time lookup.
	byID map[int64]int
	// size is total source size in bytes.
	size int64
	// dataStart is absolute offset of first payload byte.
	dataStart int64
	// mu guards closed state and close operation.
	mu sync.Mutex
	// sha1Trailer stores optional trailer hash when present.
	sha1Trailer [shaSize]byte
	// hasTrailer reports whether trailing 0x00 + SHA1 was detected.
	hasTrailer bool
	// closed reports whether Close was already called.
	closed bool
}

// Open opens a BNDL file by path and parses its header and entry table.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions opens a BNDL file by path and parses its structures using explicit reader options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	r, err := NewReaderFromReaderAtWithOptions(f, fi.Size(), opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r.file = f
	return r, nil
}

// NewReaderFromReaderAt parses a bundle from an existing ReaderAt and known size.
func NewReaderFromReaderAt(ra io.ReaderAt, size int64) (*Reader, error) {
	return NewReaderFromReaderAtWithOptions(ra, size, ReaderOptions{})
}

// NewReaderFromReaderAtWithOptions parses a bundle from an existing ReaderAt and known size using explicit reader options.
func NewReaderFromReaderAtWithOptions(ra io.ReaderAt, size int64, opts ReaderOptions) (*Reader, error) {
	if ra == nil {
		return nil, ErrNilReader
	}

	r := &Reader{ra: ra, size: size}
	if err := r.parse(ra, size, opts); err != nil {
		return nil, err
	}

	return r, nil
}

// Entries returns a copy of parsed entries in stored TOC order.
// This order is stable for a given bundle's bytes and defines item enumeration.
func (r *Reader) Entries() []EntryInfo {
	if r == nil {
		return nil
	}

	entries := make([]EntryInfo, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// EntriesByClass returns a copy of parsed entries carrying the given class, in TOC order.
func (r *Reader) EntriesByClass(class ClassID) []EntryInfo {
	if r == nil {
		return nil
	}

	out := make([]EntryInfo, 0, 4)
	for i := range r.entries {
		if r.entries[i].Class == class {
			out = append(out, r.entries[i])
		}
	}

	return out
}

// Close closes the underlying file if reader owns one.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}

// SHA1Trailer returns the parsed 20-byte trailer hash when present.
func (r *Reader) SHA1Trailer() ([20]byte, bool) {
	if r == nil || !r.hasTrailer {
		var z [20]byte
		return z, false
	}

	return r.sha1Trailer, true
}

// parse reads and validates bundle structure from ReaderAt.
func (r *Reader) parse(ra io.ReaderAt, size int64, opts ReaderOptions) error {
	entries, dataStart, err := parseTOC(ra, size)
	if err != nil {
		return err
	}

	r.entries = entries
	r.dataStart = dataStart

	r.byID = make(map[int64]int, len(r.entries))
	for i := range r.entries {
		id := r.entries[i].PathID
		if _, dup := r.byID[id]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicatePathID, id)
		}

		r.byID[id] = i
	}

	// check for SHA1 trailer
	if size-sha1TrailerSize >= dataStart {
		var tail [sha1TrailerSize]byte
		if _, err := ra.ReadAt(tail[:], size-sha1TrailerSize); err == nil && tail[0] == 0x00 {
			r.hasTrailer = true
			copy(r.sha1Trailer[:], tail[1:])
		}
	}

	if opts.VerifyTrailer {
		if err := r.VerifyTrailer(); err != nil {
			return err
		}
	}

	return nil
}

// parseTOC reads the fixed header plus entry table and returns validated entry metadata.
func parseTOC(ra io.ReaderAt, size int64) ([]EntryInfo, int64, error) {
	var header [headerSize]byte
	if _, err := ra.ReadAt(header[:], 0); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, 0, fmt.Errorf("%w: short header", ErrInvalidHeader)
		}

		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	if !bytes.Equal(header[0:4], bundleMagic[:]) {
		return nil, 0, ErrInvalidHeader
	}

	if version := binary.LittleEndian.Uint16(header[4:6]); version != formatVersion {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	entryCount := binary.LittleEndian.Uint32(header[8:12])
	dataStart := int64(headerSize) + int64(entryCount)*tocRecordSize
	if dataStart > size {
		return nil, 0, fmt.Errorf("%w: truncated entry table", ErrInvalidHeader)
	}

	entries, err := readTOCRecords(ra, entryCount)
	if err != nil {
		return nil, 0, err
	}

	if err := validateEntryOffsets(entries, dataStart, size); err != nil {
		return nil, 0, err
	}

	return entries, dataStart, nil
}

// readTOCRecords parses entry records with sequential buffered reads.
func readTOCRecords(ra io.ReaderAt, entryCount uint32) ([]EntryInfo, error) {
	if entryCount == 0 {
		return nil, nil
	}

	tableSize := int64(entryCount) * tocRecordSize
	sr := io.NewSectionReader(ra, headerSize, tableSize)
	br := tocReaderPool.Get().(*bufio.Reader) //nolint:forcetypeassert // pool contains only *bufio.Reader
	br.Reset(sr)
	defer tocReaderPool.Put(br)

	entries := make([]EntryInfo, 0, entryCount)
	var record [tocRecordSize]byte
	for i := uint32(0); i < entryCount; i++ {
		if _, err := io.ReadFull(br, record[:]); err != nil {
			return nil, fmt.Errorf("read entry record %d: %w", i, err)
		}

		entries = append(entries, EntryInfo{
			PathID:       int64(binary.LittleEndian.Uint64(record[0:8])),
			Class:        ClassID(binary.LittleEndian.Uint32(record[8:12])),
			Compression:  CompressionScheme(record[12]),
			Offset:       binary.LittleEndian.Uint64(record[13:21]),
			DataSize:     binary.LittleEndian.Uint64(record[21:29]),
			OriginalSize: binary.LittleEndian.Uint64(record[29:37]),
		})
	}

	return entries, nil
}

// validateEntryOffsets validates payload bounds for every parsed entry.
func validateEntryOffsets(entries []EntryInfo, dataStart int64, totalSize int64) error {
	for i := range entries {
		e := &entries[i]
		if e.Offset < uint64(dataStart) {
			return fmt.Errorf("%w: entry %d offset before data start", ErrInvalidEntryOffset, e.PathID)
		}

		end := e.Offset + e.DataSize
		if end < e.Offset || end > uint64(totalSize) {
			return fmt.Errorf("%w: entry %d payload out of file bounds", ErrInvalidEntryOffset, e.PathID)
		}
	}

	return nil
}
