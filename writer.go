// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
)

var (
	// defaultPackWriterPool reuses default-sized bufio writers between Pack calls.
	defaultPackWriterPool = sync.Pool{
		New: func() any {
			return bufio.NewWriterSize(io.Discard, DefaultWriteBuffer)
		},
	}
	// defaultPackCopyBufferPool reuses payload copy buffers between Pack calls.
	defaultPackCopyBufferPool = sync.Pool{
		New: func() any {
			return new([packCopyBufferSize]byte)
		},
	}
)

// packCopyBufferSize is per-pack temporary buffer used by streaming payload copy.
const packCopyBufferSize = 64 * 1024

// writtenEntry stores concrete entry values produced during payload write.
type writtenEntry struct {
	name                 string
	pathID               int64
	offset               uint64
	dataSize             uint64
	originalSize         uint64
	class                ClassID
	compression          CompressionScheme
	compressionCandidate bool
}

// Pack writes a BNDL bundle to out from the given inputs.
// Inputs are sorted by path id for deterministic output.
func Pack(ctx context.Context, out io.WriteSeeker, inputs []Input, opts PackOptions) (*PackResult, error) {
	if out == nil {
		return nil, ErrNilWriter
	}
	if len(inputs) == 0 {
		return nil, ErrEmptyInputs
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()
	if err := opts.Scheme.valid(); err != nil {
		return nil, err
	}

	plan, err := preparePackPlan(inputs)
	if err != nil {
		return nil, err
	}

	matcher, err := newCompressMatcher(opts.Compress, opts.CompressMatcherOptions)
	if err != nil {
		return nil, fmt.Errorf("compile compress rules: %w", err)
	}

	w, releaseWriter := acquirePackWriter(out, opts.WriterBufferSize)
	defer releaseWriter()

	var header [headerSize]byte
	copy(header[0:4], bundleMagic[:])
	binary.LittleEndian.PutUint16(header[4:6], formatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(plan)))
	if _, err := w.Write(header[:]); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	// Entry table is patched in place after payloads are written.
	var placeholder [tocRecordSize]byte
	for range plan {
		if _, err := w.Write(placeholder[:]); err != nil {
			return nil, fmt.Errorf("write entry placeholder: %w", err)
		}
	}

	tocSize := int64(len(plan)) * tocRecordSize
	dataStart := int64(headerSize) + tocSize
	if dataStart > maxBundleData {
		return nil, fmt.Errorf("%w: data start offset %d", ErrSizeOverflow, dataStart)
	}

	copyBuf, releaseCopyBuffer := acquirePackCopyBuffer()
	defer releaseCopyBuffer()

	written := make([]writtenEntry, 0, len(plan))
	currentOffset := uint64(dataStart)
	var (
		rawBytes                  int64
		compressedBytes           int64
		compressedEntries         int
		skippedCompressionEntries int
	)

	for i := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in := &plan[i]
		candidate := shouldUseCompressionForInput(opts, matcher, *in)

		rc, err := openInputReader(*in)
		if err != nil {
			return nil, err
		}

		record, writeErr := writePackPayload(w, rc, *in, opts, candidate, currentOffset, copyBuf)
		closeErr := rc.Close()
		if writeErr != nil {
			return nil, writeErr
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close input %s: %w", in.Name, closeErr)
		}

		record.offset = currentOffset
		record.compressionCandidate = candidate
		written = append(written, record)

		if record.compression != CompressionNone {
			compressedEntries++
			compressedBytes += int64(record.dataSize)
		} else {
			rawBytes += int64(record.dataSize)
		}
		if candidate && record.compression == CompressionNone {
			skippedCompressionEntries++
		}

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(PackEntryProgress{
				Name:                 record.name,
				PathID:               record.pathID,
				Offset:               record.offset,
				DataSize:             record.dataSize,
				OriginalSize:         record.originalSize,
				Class:                record.class,
				Compression:          record.compression,
				CompressionCandidate: record.compressionCandidate,
			})
		}

		currentOffset += record.dataSize
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush payloads: %w", err)
	}

	toc := make([]byte, tocSize)
	for i := range written {
		record := &written[i]
		field := toc[i*tocRecordSize:]
		binary.LittleEndian.PutUint64(field[0:8], uint64(record.pathID))
		binary.LittleEndian.PutUint32(field[8:12], uint32(record.class))
		field[12] = byte(record.compression)
		binary.LittleEndian.PutUint64(field[13:21], record.offset)
		binary.LittleEndian.PutUint64(field[21:29], record.dataSize)
		binary.LittleEndian.PutUint64(field[29:37], record.originalSize)
	}

	if _, err := out.Seek(headerSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to entry table: %w", err)
	}
	if _, err := out.Write(toc); err != nil {
		return nil, fmt.Errorf("patch entry table: %w", err)
	}

	return &PackResult{
		WrittenEntries:            len(written),
		DataSize:                  int64(currentOffset) - dataStart,
		TOCSize:                   tocSize,
		RawBytes:                  rawBytes,
		CompressedBytes:           compressedBytes,
		CompressedEntries:         compressedEntries,
		SkippedCompressionEntries: skippedCompressionEntries,
	}, nil
}

// PackFile writes a BNDL bundle to outPath and appends a SHA1 trailer.
func PackFile(ctx context.Context, outPath string, inputs []Input, opts PackOptions) (*PackResult, error) {
	f, err := os.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // Caller-controlled output path.
	if err != nil {
		return nil, fmt.Errorf("create bundle file: %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	res, err := Pack(ctx, f, inputs, opts)
	if err != nil {
		return nil, err
	}

	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync bundle file: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close bundle file: %w", err)
	}
	f = nil

	if err := writeSHA1Trailer(outPath); err != nil {
		return nil, fmt.Errorf("write SHA1 trailer: %w", err)
	}

	return res, nil
}

// acquirePackWriter returns a buffered writer and release callback for Pack.
func acquirePackWriter(out io.Writer, size int) (*bufio.Writer, func()) {
	if size == DefaultWriteBuffer {
		w := defaultPackWriterPool.Get().(*bufio.Writer) //nolint:forcetypeassert // pool contains only *bufio.Writer
		w.Reset(out)

		return w, func() {
			w.Reset(io.Discard)
			defaultPackWriterPool.Put(w)
		}
	}

	return bufio.NewWriterSize(out, size), func() {}
}

// acquirePackCopyBuffer returns reusable payload copy buffer and release callback.
func acquirePackCopyBuffer() ([]byte, func()) {
	arr := defaultPackCopyBufferPool.Get().(*[packCopyBufferSize]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	buf := arr[:]

	return buf, func() {
		defaultPackCopyBufferPool.Put(arr)
	}
}

// preparePackPlan validates and sorts pack inputs for a deterministic write pass.
func preparePackPlan(inputs []Input) ([]Input, error) {
	if int64(len(inputs)) > int64(math.MaxUint32) {
		return nil, fmt.Errorf("%w: %d inputs", ErrSizeOverflow, len(inputs))
	}

	sorted := make([]Input, len(inputs))
	copy(sorted, inputs)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PathID < sorted[j].PathID
	})

	seen := make(map[int64]string, len(sorted))
	var total int64
	for i := range sorted {
		in := &sorted[i]
		if in.Class == 0 {
			return nil, fmt.Errorf("%w: input %s has zero class", ErrInvalidClass, in.Name)
		}

		if previous, ok := seen[in.PathID]; ok {
			return nil, fmt.Errorf("%w: %d (%q and %q)", ErrDuplicatePathID, in.PathID, previous, in.Name)
		}

		seen[in.PathID] = in.Name
		if in.SizeHint > 0 {
			total += in.SizeHint
		}
	}

	if total > maxBundleData {
		return nil, fmt.Errorf("%w: estimated data %d exceeds format limit", ErrSizeOverflow, total)
	}

	return sorted, nil
}

// openInputReader opens source stream for one input.
func openInputReader(in Input) (io.ReadCloser, error) {
	if in.Open == nil {
		return nil, fmt.Errorf("input %s: Open is nil", in.Name)
	}

	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", in.Name, err)
	}

	return rc, nil
}

// writePackPayload writes one entry payload according to precomputed compression plan.
func writePackPayload(
	dst io.Writer,
	src io.Reader,
	in Input,
	opts PackOptions,
	useCompression bool,
	currentOffset uint64,
	copyBuf []byte,
) (writtenEntry, error) {
	if !useCompression {
		return writeRawPayload(dst, src, in, currentOffset, copyBuf)
	}

	return writeCompressedCandidatePayload(dst, src, in, opts, currentOffset, copyBuf)
}

// shouldUseCompressionForInput reports whether input should enter compression candidate path.
func shouldUseCompressionForInput(opts PackOptions, matcher *compressMatcher, in Input) bool {
	if matcher == nil {
		return false
	}

	if in.SizeHint > 0 && !shouldCompressBySize(opts, in.SizeHint) {
		return false
	}

	return matcher.Match(in.Name)
}

// writeRawPayload streams payload directly into destination without compression.
func writeRawPayload(
	dst io.Writer,
	src io.Reader,
	in Input,
	currentOffset uint64,
	copyBuf []byte,
) (writtenEntry, error) {
	maxEntrySize := maxBundleData - int64(currentOffset)
	streamed, err := copyPayloadBounded(dst, src, maxEntrySize, copyBuf)
	if err != nil {
		return writtenEntry{}, fmt.Errorf("stream input %s: %w", in.Name, err)
	}

	dataSize, err := checkedDataSize(in.Name, streamed, currentOffset)
	if err != nil {
		return writtenEntry{}, err
	}

	return writtenEntry{
		name:        in.Name,
		pathID:      in.PathID,
		class:       in.Class,
		compression: CompressionNone,
		dataSize:    dataSize,
	}, nil
}

// writeCompressedCandidatePayload handles compression candidate with in-memory path for known-size inputs.
// Unknown-size and out-of-range candidates are streamed raw.
func writeCompressedCandidatePayload(
	dst io.Writer,
	src io.Reader,
	in Input,
	opts PackOptions,
	currentOffset uint64,
	copyBuf []byte,
) (writtenEntry, error) {
	maxEntrySize := maxBundleData - int64(currentOffset)
	if !shouldUseInMemoryCompressPath(opts, in.SizeHint, maxEntrySize) {
		return writeRawPayload(dst, src, in, currentOffset, copyBuf)
	}

	raw, err := readPayloadBounded(src, maxEntrySize, in.SizeHint, opts.MaxCompressSize, copyBuf)
	if err != nil {
		return writtenEntry{}, fmt.Errorf("stream input %s: %w", in.Name, err)
	}

	originalSize, err := checkedDataSize(in.Name, int64(len(raw)), currentOffset)
	if err != nil {
		return writtenEntry{}, err
	}

	record := writtenEntry{
		name:        in.Name,
		pathID:      in.PathID,
		class:       in.Class,
		compression: CompressionNone,
		dataSize:    originalSize,
	}
	if !shouldCompressBySize(opts, int64(len(raw))) {
		if _, err := dst.Write(raw); err != nil {
			return writtenEntry{}, fmt.Errorf("write payload %s: %w", in.Name, err)
		}

		return record, nil
	}

	compressed, err := compressPayload(opts.Scheme, raw)
	if err != nil {
		return writtenEntry{}, fmt.Errorf("compress %s: %w", in.Name, err)
	}
	if len(compressed) == 0 || len(compressed) >= len(raw) {
		if _, err := dst.Write(raw); err != nil {
			return writtenEntry{}, fmt.Errorf("write payload %s: %w", in.Name, err)
		}

		return record, nil
	}

	dataSize, err := checkedDataSize(in.Name, int64(len(compressed)), currentOffset)
	if err != nil {
		return writtenEntry{}, err
	}

	record.dataSize = dataSize
	record.originalSize = originalSize
	record.compression = opts.Scheme
	if _, err := dst.Write(compressed); err != nil {
		return writtenEntry{}, fmt.Errorf("write payload %s: %w", in.Name, err)
	}

	return record, nil
}

// shouldUseInMemoryCompressPath reports whether compression candidate can use the in-memory path.
func shouldUseInMemoryCompressPath(opts PackOptions, sizeHint int64, maxEntrySize int64) bool {
	if sizeHint <= 0 {
		return false
	}
	if sizeHint > maxEntrySize {
		return false
	}
	if sizeHint > opts.MaxCompressSize {
		return false
	}

	return true
}

// readPayloadBounded reads whole payload into memory with strict max-size enforcement.
func readPayloadBounded(src io.Reader, limit int64, sizeHint int64, inMemoryLimit int64, copyBuf []byte) ([]byte, error) {
	var dst bytes.Buffer
	if sizeHint > 0 && sizeHint <= inMemoryLimit {
		dst.Grow(int(sizeHint))
	}

	written, err := copyPayloadBounded(&dst, src, limit, copyBuf)
	if err != nil {
		return nil, err
	}
	if int64(dst.Len()) != written {
		return nil, fmt.Errorf("short read into memory (%d/%d)", dst.Len(), written)
	}

	return dst.Bytes(), nil
}

// copyPayloadBounded streams payload from src to dst and enforces strict size limit.
func copyPayloadBounded(dst io.Writer, src io.Reader, limit int64, buf []byte) (int64, error) {
	if dst == nil {
		return 0, ErrNilWriter
	}
	if src == nil {
		return 0, ErrNilReader
	}
	if limit < 0 {
		return 0, ErrSizeOverflow
	}
	if len(buf) == 0 {
		buf = make([]byte, 32*1024)
	}

	var written int64
	emptyReads := 0
	for written < limit {
		chunkSize := len(buf)
		remaining := limit - written
		if int64(chunkSize) > remaining {
			chunkSize = int(remaining)
		}

		n, readErr := src.Read(buf[:chunkSize])
		if n > 0 {
			emptyReads = 0
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)

			if writeErr != nil {
				return written, writeErr
			}
			if nw != n {
				return written, io.ErrShortWrite
			}
		}
		if n == 0 && readErr == nil {
			emptyReads++
			if emptyReads > 100 {
				return written, io.ErrNoProgress
			}

			continue
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}

			return written, readErr
		}
	}

	// If we consumed exactly the limit, probe one extra byte to ensure source is not longer.
	if written == limit {
		var probe [1]byte
		n, err := src.Read(probe[:])
		if n > 0 {
			return written, ErrSizeOverflow
		}
		if err != nil && err != io.EOF {
			return written, err
		}
	}

	return written, nil
}

// checkedDataSize validates entry size against the format payload limit and running offset.
func checkedDataSize(name string, size int64, currentOffset uint64) (uint64, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: entry %s size %d", ErrSizeOverflow, name, size)
	}

	if uint64(size)+currentOffset > maxBundleData {
		return 0, fmt.Errorf("%w: entry %s would exceed format limit", ErrSizeOverflow, name)
	}

	return uint64(size), nil
}
