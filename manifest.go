// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import "fmt"

// Minimum encoded record sizes used to validate declared counts.
const (
	minContainerRecordSize = 20
	preloadRecordSize      = 12
)

// ContainerEntry maps one addressable container name to its primary asset
// plus a slice of the manifest preload table.
type ContainerEntry struct {
	// Name is the container path, forward-slash separated.
	Name string `json:"name"`
	// AssetPathID is the path id of the container's primary asset.
	AssetPathID int64 `json:"assetPathId"`
	// PreloadIndex is the first preload table index claimed by the container.
	PreloadIndex uint32 `json:"preloadIndex"`
	// PreloadSize is the number of claimed preload table records.
	PreloadSize uint32 `json:"preloadSize"`
}

// PreloadRef is one preload table record referencing a dependent entry.
type PreloadRef struct {
	// PathID is the referenced entry path id.
	PathID int64 `json:"pathId"`
	// FileID selects the source file, zero for the current bundle.
	FileID int32 `json:"fileId"`
}

// Manifest is the decoded payload of a ClassManifest entry.
type Manifest struct {
	// Containers lists named containers in stored order.
	Containers []ContainerEntry `json:"containers"`
	// Preload is the shared preload table indexed by container claims.
	Preload []PreloadRef `json:"preload"`
}

// DecodeManifest decodes a manifest payload.
func DecodeManifest(data []byte) (*Manifest, error) {
	p := payloadReader{buf: data}

	containerCount, err := p.u32()
	if err != nil {
		return nil, fmt.Errorf("manifest container count: %w", err)
	}
	if uint64(containerCount)*minContainerRecordSize > uint64(p.remaining()) {
		return nil, fmt.Errorf("%w: container count %d exceeds payload", ErrInvalidPayload, containerCount)
	}

	m := &Manifest{Containers: make([]ContainerEntry, 0, containerCount)}
	for i := uint32(0); i < containerCount; i++ {
		var c ContainerEntry
		if c.Name, err = p.str(); err != nil {
			return nil, fmt.Errorf("manifest container %d name: %w", i, err)
		}
		if c.AssetPathID, err = p.i64(); err != nil {
			return nil, fmt.Errorf("manifest container %d asset: %w", i, err)
		}
		if c.PreloadIndex, err = p.u32(); err != nil {
			return nil, fmt.Errorf("manifest container %d preload index: %w", i, err)
		}
		if c.PreloadSize, err = p.u32(); err != nil {
			return nil, fmt.Errorf("manifest container %d preload size: %w", i, err)
		}

		m.Containers = append(m.Containers, c)
	}

	preloadCount, err := p.u32()
	if err != nil {
		return nil, fmt.Errorf("manifest preload count: %w", err)
	}
	if uint64(preloadCount)*preloadRecordSize > uint64(p.remaining()) {
		return nil, fmt.Errorf("%w: preload count %d exceeds payload", ErrInvalidPayload, preloadCount)
	}

	m.Preload = make([]PreloadRef, 0, preloadCount)
	for i := uint32(0); i < preloadCount; i++ {
		var ref PreloadRef
		if ref.PathID, err = p.i64(); err != nil {
			return nil, fmt.Errorf("manifest preload %d path id: %w", i, err)
		}
		if ref.FileID, err = p.i32(); err != nil {
			return nil, fmt.Errorf("manifest preload %d file id: %w", i, err)
		}

		m.Preload = append(m.Preload, ref)
	}

	if p.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing manifest bytes", ErrInvalidPayload, p.remaining())
	}

	return m, nil
}

// EncodeManifest encodes a manifest payload.
func EncodeManifest(m *Manifest) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil manifest", ErrInvalidPayload)
	}

	buf := appendU32(nil, uint32(len(m.Containers)))
	for i := range m.Containers {
		c := &m.Containers[i]
		next, err := appendString(buf, c.Name)
		if err != nil {
			return nil, fmt.Errorf("manifest container %d name: %w", i, err)
		}

		buf = appendI64(next, c.AssetPathID)
		buf = appendU32(buf, c.PreloadIndex)
		buf = appendU32(buf, c.PreloadSize)
	}

	buf = appendU32(buf, uint32(len(m.Preload)))
	for i := range m.Preload {
		buf = appendI64(buf, m.Preload[i].PathID)
		buf = appendU32(buf, uint32(m.Preload[i].FileID))
	}

	return buf, nil
}

// Manifest reads and decodes a ClassManifest entry payload.
func (r *Reader) Manifest(info EntryInfo) (*Manifest, error) {
	if info.Class != ClassManifest {
		return nil, fmt.Errorf("%w: path id %d is %s", ErrClassMismatch, info.PathID, info.Class)
	}

	payload, err := r.readEntryPayload(info)
	if err != nil {
		return nil, err
	}

	return DecodeManifest(payload)
}
