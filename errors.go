// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import "errors"

// Sentinel errors for bundle operations. Use errors.Is in callers.
var (
	// ErrInvalidHeader means the file is missing the BNDL magic or is too short for a header.
	ErrInvalidHeader = errors.New("invalid BNDL file: missing or bad header")
	// ErrUnsupportedVersion means the header declares a format version this package cannot read.
	ErrUnsupportedVersion = errors.New("unsupported BNDL format version")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrEntryNotFound means no entry carries the requested path id.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrClosed means the reader or resource is already closed.
	ErrClosed = errors.New("reader or resource already closed")
	// ErrSizeOverflow means a size field exceeds format or platform limits.
	ErrSizeOverflow = errors.New("size exceeds format limits")
	// ErrEmptyInputs means no inputs provided for pack.
	ErrEmptyInputs = errors.New("no inputs provided for pack")
	// ErrInvalidCompressPattern means one or more compression rules are invalid.
	ErrInvalidCompressPattern = errors.New("invalid compress rules")
	// ErrUnknownCompression means an entry carries an unknown compression scheme byte.
	ErrUnknownCompression = errors.New("unknown compression scheme")
	// ErrDuplicatePathID means two entries resolve to the same path id.
	ErrDuplicatePathID = errors.New("duplicate entry path id")
	// ErrInvalidClass means an input entry class is zero or unknown to the writer.
	ErrInvalidClass = errors.New("invalid entry class")
	// ErrInvalidEntryOffset means one or more TOC offsets fall outside the file payload region.
	ErrInvalidEntryOffset = errors.New("invalid entry offset")
	// ErrNameTooLong means a payload string exceeds the maximum encoded length.
	ErrNameTooLong = errors.New("name exceeds maximum length")
	// ErrInvalidPayload means an entry payload does not match its class layout.
	ErrInvalidPayload = errors.New("malformed entry payload")
	// ErrClassMismatch means the entry class does not match the requested decode.
	ErrClassMismatch = errors.New("entry class does not match requested decode")
	// ErrTextureNotFound means a sprite references a texture path id absent from the bundle.
	ErrTextureNotFound = errors.New("sprite texture reference not found")
	// ErrUnknownPixelFormat means a texture payload carries an unknown pixel format byte.
	ErrUnknownPixelFormat = errors.New("unknown texture pixel format")
	// ErrTrailerMissing means the file carries no SHA1 trailer.
	ErrTrailerMissing = errors.New("file has no SHA1 trailer")
	// ErrTrailerTooShort means the file is too short for the trailer.
	ErrTrailerTooShort = errors.New("file too short for trailer")
	// ErrInvalidTrailerPrefix means the trailer does not start with 0x00.
	ErrInvalidTrailerPrefix = errors.New("trailer does not start with 0x00")
	// ErrTrailerHashMismatch means the trailer hash mismatch.
	ErrTrailerHashMismatch = errors.New("trailer hash mismatch")
	// ErrInvalidOutputPath means a derived output path is empty, absolute, or escapes the destination root.
	ErrInvalidOutputPath = errors.New("invalid output path")
)
