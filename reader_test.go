package bndl

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/woozymasta/lzss"
)

func TestEntries_ReturnsCopy(t *testing.T) {
	t.Parallel()

	path := createManualBundle(t, 1, []byte("payload"))
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	entries := r.Entries()
	entries[0].PathID = 999

	if got := r.Entries()[0].PathID; got != 1 {
		t.Fatalf("internal entry mutated: pathID=%d", got)
	}
}

func TestEntriesByClass(t *testing.T) {
	t.Parallel()

	data := buildBundleBytes(t, []rawEntry{
		{pathID: 1, class: ClassTextAsset, payload: []byte("a")},
		{pathID: 2, class: ClassTexture2D, payload: []byte("b")},
		{pathID: 3, class: ClassTextAsset, payload: []byte("c")},
	})
	r, err := Open(writeBundleFile(t, data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	texts := r.EntriesByClass(ClassTextAsset)
	if len(texts) != 2 || texts[0].PathID != 1 || texts[1].PathID != 3 {
		t.Fatalf("text entries: %+v", texts)
	}
	if got := r.EntriesByClass(ClassMesh); len(got) != 0 {
		t.Fatalf("expected no mesh entries, got %d", len(got))
	}
}

func TestReadEntry_NotFound(t *testing.T) {
	t.Parallel()

	r, err := Open(createManualBundle(t, 1, []byte("a")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	_, err = r.ReadEntry(42)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestReader_UseAfterClose(t *testing.T) {
	t.Parallel()

	r, err := Open(createManualBundle(t, 1, []byte("a")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := r.OpenEntry(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestListEntries_MatchesOpenEntries(t *testing.T) {
	t.Parallel()

	data := buildBundleBytes(t, []rawEntry{
		{pathID: 10, class: ClassTextAsset, payload: []byte("aa")},
		{pathID: 20, class: ClassSprite, payload: []byte("bbb")},
	})
	path := writeBundleFile(t, data)

	listed, err := ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	opened := r.Entries()
	if len(listed) != len(opened) {
		t.Fatalf("entry count mismatch: %d vs %d", len(listed), len(opened))
	}
	for i := range listed {
		if listed[i] != opened[i] {
			t.Fatalf("entry %d mismatch: %+v vs %+v", i, listed[i], opened[i])
		}
	}
}

func TestListEntriesFromReaderAt(t *testing.T) {
	t.Parallel()

	data := buildBundleBytes(t, []rawEntry{
		{pathID: 3, class: ClassManifest, payload: []byte("xyz")},
	})

	entries, err := ListEntriesFromReaderAt(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ListEntriesFromReaderAt: %v", err)
	}
	if len(entries) != 1 || entries[0].PathID != 3 || entries[0].Class != ClassManifest {
		t.Fatalf("entries: %+v", entries)
	}

	if _, err := ListEntriesFromReaderAt(nil, 0); !errors.Is(err, ErrNilReader) {
		t.Fatalf("expected ErrNilReader, got %v", err)
	}
}

func TestReadEntry_LZSSCompressed(t *testing.T) {
	t.Parallel()

	plain := bytes.Repeat([]byte("bundle payload "), 512)
	compressed, err := lzss.Compress(plain, lzss.DefaultCompressOptions())
	if err != nil {
		t.Fatalf("lzss.Compress: %v", err)
	}

	data := buildBundleBytes(t, []rawEntry{{
		pathID:       9,
		class:        ClassTextAsset,
		compression:  CompressionLZSS,
		originalSize: uint64(len(plain)),
		payload:      compressed,
	}})
	r, err := Open(writeBundleFile(t, data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	got, err := r.ReadEntry(9)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("decompressed payload differs: %d vs %d bytes", len(got), len(plain))
	}
}

func TestReadEntry_LZ4Compressed(t *testing.T) {
	t.Parallel()

	plain := bytes.Repeat([]byte{'z'}, 4096)
	compressed, err := compressLZ4Block(plain)
	if err != nil {
		t.Fatalf("compressLZ4Block: %v", err)
	}
	if len(compressed) == 0 || len(compressed) >= len(plain) {
		t.Fatalf("run of identical bytes must compress, got %d bytes", len(compressed))
	}

	data := buildBundleBytes(t, []rawEntry{{
		pathID:       4,
		class:        ClassTextAsset,
		compression:  CompressionLZ4,
		originalSize: uint64(len(plain)),
		payload:      compressed,
	}})
	r, err := Open(writeBundleFile(t, data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	got, err := r.ReadEntry(4)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("decompressed payload differs")
	}
}

func TestReadEntry_UnknownCompression(t *testing.T) {
	t.Parallel()

	data := buildBundleBytes(t, []rawEntry{{
		pathID:       1,
		class:        ClassTextAsset,
		compression:  CompressionScheme(7),
		originalSize: 1,
		payload:      []byte("x"),
	}})
	r, err := Open(writeBundleFile(t, data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	_, err = r.ReadEntry(1)
	if !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("expected ErrUnknownCompression, got %v", err)
	}
}

func TestReadEntry_CompressedWithoutOriginalSize(t *testing.T) {
	t.Parallel()

	data := buildBundleBytes(t, []rawEntry{{
		pathID:      1,
		class:       ClassTextAsset,
		compression: CompressionLZSS,
		payload:     []byte("not a real stream"),
	}})
	r, err := Open(writeBundleFile(t, data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	_, err = r.ReadEntry(1)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestReadEntry_CorruptedLZSSPayload(t *testing.T) {
	t.Parallel()

	plain := bytes.Repeat([]byte("abcdef"), 1024)
	compressed, err := lzss.Compress(plain, lzss.DefaultCompressOptions())
	if err != nil {
		t.Fatalf("lzss.Compress: %v", err)
	}

	// Truncate the stream so decompression cannot reach the declared length.
	data := buildBundleBytes(t, []rawEntry{{
		pathID:       1,
		class:        ClassTextAsset,
		compression:  CompressionLZSS,
		originalSize: uint64(len(plain)),
		payload:      compressed[:len(compressed)/2],
	}})
	r, err := Open(writeBundleFile(t, data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if _, err := r.ReadEntry(1); err == nil {
		t.Fatal("expected error for truncated compressed payload")
	}
}

func TestOpenEntryInfo_StreamsRawPayload(t *testing.T) {
	t.Parallel()

	r, err := Open(createManualBundle(t, 6, []byte("stream me")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	rc, err := r.OpenEntryInfo(r.Entries()[0])
	if err != nil {
		t.Fatalf("OpenEntryInfo: %v", err)
	}
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "stream me" {
		t.Fatalf("payload: %q", got)
	}
}

func TestSHA1Trailer_Detected(t *testing.T) {
	t.Parallel()

	path := createManualBundle(t, 1, []byte("hello"))
	if err := writeSHA1Trailer(path); err != nil {
		t.Fatalf("writeSHA1Trailer: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if _, ok := r.SHA1Trailer(); !ok {
		t.Fatal("expected trailer to be detected")
	}
	if err := r.VerifyTrailer(); err != nil {
		t.Fatalf("VerifyTrailer: %v", err)
	}
}

func TestSHA1Trailer_AbsentOnPlainBundle(t *testing.T) {
	t.Parallel()

	r, err := Open(createManualBundle(t, 1, []byte("hello")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if _, ok := r.SHA1Trailer(); ok {
		t.Fatal("unexpected trailer on plain bundle")
	}
}
