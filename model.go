// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"fmt"
	"io"

	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	headerSize    = 12      // magic + version + reserved + entry count
	tocRecordSize = 37      // path id + class + compression + offset + sizes
	shaSize       = 20      // SHA1 digest size in trailer
	maxNameLen    = 512     // max encoded payload string length
	maxBundleData = 1 << 40 // max addressable payload region
)

// formatVersion is the only BNDL container version this package reads and writes.
const formatVersion = 1

// bundleMagic opens every BNDL container file.
var bundleMagic = [4]byte{'B', 'N', 'D', 'L'}

// Default packer tuning values.
const (
	DefaultWriteBuffer     = 16 * 1024 * 1024
	DefaultMinCompressSize = 512
	DefaultMaxCompressSize = 16 * 1024 * 1024
)

// ClassID identifies the payload layout of one bundle entry.
type ClassID uint32

// Known entry classes.
const (
	// ClassManifest is the container directory payload.
	ClassManifest ClassID = iota + 1
	// ClassTexture2D is a raw pixel texture payload.
	ClassTexture2D
	// ClassSprite is a named rectangle into another entry's texture atlas.
	ClassSprite
	// ClassTextAsset is a named raw byte blob.
	ClassTextAsset
	// ClassAudioClip is recognized but not decodable by this package.
	ClassAudioClip
	// ClassMaterial is recognized but not decodable by this package.
	ClassMaterial
	// ClassShader is recognized but not decodable by this package.
	ClassShader
	// ClassMesh is recognized but not decodable by this package.
	ClassMesh
	// ClassFont is recognized but not decodable by this package.
	ClassFont
)

// String returns the canonical class name used in diagnostics and reports.
func (c ClassID) String() string {
	switch c {
	case ClassManifest:
		return "Manifest"
	case ClassTexture2D:
		return "Texture2D"
	case ClassSprite:
		return "Sprite"
	case ClassTextAsset:
		return "TextAsset"
	case ClassAudioClip:
		return "AudioClip"
	case ClassMaterial:
		return "Material"
	case ClassShader:
		return "Shader"
	case ClassMesh:
		return "Mesh"
	case ClassFont:
		return "Font"
	default:
		return fmt.Sprintf("Class%d", uint32(c))
	}
}

// PixelFormat identifies the pixel layout of a Texture2D payload.
type PixelFormat uint8

// Texture pixel formats.
const (
	// PixelFormatRGBA8 stores 4 bytes per pixel in RGBA order.
	PixelFormatRGBA8 PixelFormat = iota + 1
	// PixelFormatGray8 stores 1 byte per pixel.
	PixelFormatGray8
)

// String returns the pixel format name used in diagnostics.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGBA8:
		return "rgba8"
	case PixelFormatGray8:
		return "gray8"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// EntryInfo describes a single parsed bundle entry.
type EntryInfo struct {
	// PathID is the stable per-bundle item identifier.
	PathID int64 `json:"path_id" yaml:"path_id"`
	// Offset is the absolute byte offset of the entry payload.
	Offset uint64 `json:"offset" yaml:"offset"`
	// DataSize is the stored payload size in bytes.
	DataSize uint64 `json:"data_size" yaml:"data_size"`
	// OriginalSize is the decompressed size for compressed entries; zero otherwise.
	OriginalSize uint64 `json:"original_size,omitempty" yaml:"original_size,omitempty"`
	// Class identifies the payload layout.
	Class ClassID `json:"class" yaml:"class"`
	// Compression is the stored payload compression scheme.
	Compression CompressionScheme `json:"compression,omitempty" yaml:"compression,omitempty"`
}

// IsCompressed reports whether this entry payload is stored compressed.
func (e *EntryInfo) IsCompressed() bool {
	return e.Compression != CompressionNone
}

// Input describes one source stream to be packed into a bundle entry.
type Input struct {
	// Open returns the raw payload stream for this entry.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Name is the item display name used by compression rule matching.
	Name string `json:"name" yaml:"name"`
	// PathID is the entry identifier inside the bundle.
	PathID int64 `json:"path_id" yaml:"path_id"`
	// SizeHint is the expected payload size in bytes (zero when unknown).
	SizeHint int64 `json:"size_hint,omitempty" yaml:"size_hint,omitempty"`
	// Class identifies the payload layout.
	Class ClassID `json:"class" yaml:"class"`
}

// PackEntryProgress contains one completed entry write event from pack flow.
type PackEntryProgress struct {
	// Name is the item display name from the input.
	Name string `json:"name" yaml:"name"`
	// PathID is the entry identifier written to the TOC.
	PathID int64 `json:"path_id" yaml:"path_id"`
	// Offset is the payload offset in the resulting bundle.
	Offset uint64 `json:"offset" yaml:"offset"`
	// DataSize is the stored payload size in bytes.
	DataSize uint64 `json:"data_size" yaml:"data_size"`
	// OriginalSize is the source size for compressed entries; zero for raw entries.
	OriginalSize uint64 `json:"original_size,omitempty" yaml:"original_size,omitempty"`
	// Class identifies the payload layout.
	Class ClassID `json:"class" yaml:"class"`
	// Compression is the scheme the payload was stored with.
	Compression CompressionScheme `json:"compression,omitempty" yaml:"compression,omitempty"`
	// CompressionCandidate reports whether the compression path was selected for this input.
	CompressionCandidate bool `json:"compression_candidate,omitempty" yaml:"compression_candidate,omitempty"`
}

// PackOptions configures pack behavior.
type PackOptions struct {
	// OnEntryDone is called after one entry is fully written to the bundle payload.
	OnEntryDone func(entry PackEntryProgress) `json:"-" yaml:"-"`
	// Compress defines ordered name rules for compression candidate selection.
	Compress []pathrules.Rule `json:"compress,omitempty" yaml:"compress,omitempty"`
	// CompressMatcherOptions control compression name rule matching.
	CompressMatcherOptions pathrules.MatcherOptions `json:"compress_matcher_options,omitzero" yaml:"compress_matcher_options,omitzero"`
	// WriterBufferSize is buffered writer size in bytes.
	WriterBufferSize int `json:"writer_buffer_size,omitempty" yaml:"writer_buffer_size,omitempty"`
	// MinCompressSize disables compression for payloads smaller than this size.
	// Default is 512 bytes.
	MinCompressSize int64 `json:"min_compress_size,omitempty" yaml:"min_compress_size,omitempty"`
	// MaxCompressSize disables compression for payloads larger than this size.
	// Default is 16 MiB and also bounds the known-size in-memory compression path.
	MaxCompressSize int64 `json:"max_compress_size,omitempty" yaml:"max_compress_size,omitempty"`
	// Scheme selects the compression scheme for candidate payloads.
	// Default is CompressionLZSS.
	Scheme CompressionScheme `json:"scheme,omitempty" yaml:"scheme,omitempty"`
}

// PackResult contains pack output statistics.
type PackResult struct {
	// WrittenEntries is the number of entries written to the bundle.
	WrittenEntries int `json:"written_entries" yaml:"written_entries"`
	// DataSize is total payload bytes written.
	DataSize int64 `json:"data_size" yaml:"data_size"`
	// TOCSize is total entry table bytes written.
	TOCSize int64 `json:"toc_size" yaml:"toc_size"`
	// RawBytes is total bytes written for uncompressed payload entries.
	RawBytes int64 `json:"raw_bytes,omitempty" yaml:"raw_bytes,omitempty"`
	// CompressedBytes is total bytes written for compressed payload entries.
	CompressedBytes int64 `json:"compressed_bytes,omitempty" yaml:"compressed_bytes,omitempty"`
	// CompressedEntries is the number of entries written with compressed payload.
	CompressedEntries int `json:"compressed_entries,omitempty" yaml:"compressed_entries,omitempty"`
	// SkippedCompressionEntries is the number of compression candidates stored as raw payload.
	SkippedCompressionEntries int `json:"skipped_compression_entries,omitempty" yaml:"skipped_compression_entries,omitempty"`
}

// ReaderOptions configures reader parse behavior.
type ReaderOptions struct {
	// VerifyTrailer requires a present and valid SHA1 trailer at parse time.
	VerifyTrailer bool `json:"verify_trailer,omitempty" yaml:"verify_trailer,omitempty"`
}

// applyDefaults fills zero-valued pack options with defaults.
func (opts *PackOptions) applyDefaults() {
	if opts.WriterBufferSize < 4096 {
		opts.WriterBufferSize = DefaultWriteBuffer
	}

	if opts.MinCompressSize <= 0 {
		opts.MinCompressSize = DefaultMinCompressSize
	}

	if opts.MaxCompressSize <= 0 || opts.MaxCompressSize <= opts.MinCompressSize {
		opts.MaxCompressSize = DefaultMaxCompressSize
	}

	if opts.Scheme == CompressionNone {
		opts.Scheme = CompressionLZSS
	}

	if opts.CompressMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.CompressMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.CompressMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.CompressMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}
