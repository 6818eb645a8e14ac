// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

/*
Package bndl provides read, decode, and pack operations for BNDL asset
bundles. A bundle stores typed game assets (manifests, textures, sprites,
text blobs) addressed by 64-bit path ids. Reading works without loading the
full bundle payload into memory, and packing accepts caller-provided streams
(Input.Open).

Compression rules (summary):
  - name decision must include entry via PackOptions.Compress rules;
  - final entry size must be within [MinCompressSize, MaxCompressSize];
  - known-size inputs use in-memory compression path (bounded by MaxCompressSize);
  - unknown-size inputs are streamed raw;
  - compression is written only when result is smaller than source.

# Reading

Open a bundle and list or read entries:

	r, err := bndl.Open("level0.bndl")
	if err != nil {
	    return err
	}
	defer r.Close()
	for _, e := range r.Entries() {
	    data, _ := r.ReadEntry(e.PathID)
	    // use data
	}

For metadata-only scans, use fast helpers without creating a full reader:

	entries, err := bndl.ListEntries("level0.bndl")
	if err != nil {
	    return err
	}
	_ = entries

To require a valid SHA1 trailer at parse time:

	r, err := bndl.OpenWithOptions("level0.bndl", bndl.ReaderOptions{
	    VerifyTrailer: true,
	})
	if err != nil {
	    return err
	}
	defer r.Close()

# Decoding

Typed payloads decode through class-checked reader methods:

	for _, e := range r.EntriesByClass(bndl.ClassManifest) {
	    m, err := r.Manifest(e)
	    if err != nil {
	        return err
	    }
	    _ = m.Containers
	}

Sprites crop their rectangle out of the backing texture in the same bundle:

	img, err := r.SpriteImage(spriteEntry)
	if err != nil {
	    return err
	}
	if err := bndl.SaveImage(img, "out/icon.png"); err != nil {
	    return err
	}

# Packing

Pack from stream-oriented inputs (order is deterministic by path id):
examples below use github.com/woozymasta/pathrules for compression filters:

	inputs := []bndl.Input{
	    {
	        PathID: 101,
	        Name:   "docs/readme",
	        Class:  bndl.ClassTextAsset,
	        Open:   func() (io.ReadCloser, error) { return os.Open("src/readme.bin") },
	    },
	}
	res, err := bndl.Pack(ctx, outFile, inputs, bndl.PackOptions{
	    // Empty rule set means no compression.
	    Compress: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "docs/**"},
	    },
	    CompressMatcherOptions: pathrules.MatcherOptions{
	        CaseInsensitive: true,
	        DefaultAction:   pathrules.ActionExclude,
	    },
	    Scheme: bndl.CompressionLZ4,
	    OnEntryDone: func(entry bndl.PackEntryProgress) {
	        // progress callback per written entry
	    },
	})
	_ = res.CompressedEntries

To write to a path and append the SHA1 trailer:

	res, err := bndl.PackFile(ctx, "level0.bndl", inputs, opts)
*/
package bndl
