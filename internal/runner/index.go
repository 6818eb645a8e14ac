// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package runner

import (
	"fmt"
	"log/slog"

	"github.com/asazato/bndl"
)

// BuildContainerIndex maps item path ids to container names by walking every
// manifest entry of the bundle. Bundles usually carry zero or one manifest;
// multiple manifests accumulate into one index.
// A manifest decode failure fails the whole bundle. Containers claiming
// preload indices outside the table are logged per index and skipped.
func BuildContainerIndex(r *bndl.Reader, logger *slog.Logger) (map[int64]string, error) {
	idx := make(map[int64]string)

	for _, e := range r.EntriesByClass(bndl.ClassManifest) {
		m, err := r.Manifest(e)
		if err != nil {
			return nil, fmt.Errorf("decode manifest %d: %w", e.PathID, err)
		}

		for i := range m.Containers {
			c := &m.Containers[i]
			end := uint64(c.PreloadIndex) + uint64(c.PreloadSize)
			for j := uint64(c.PreloadIndex); j < end; j++ {
				if j >= uint64(len(m.Preload)) {
					logger.Warn("Preload index out of range",
						"container", c.Name,
						"index", j,
						"table_size", len(m.Preload))
					continue
				}

				idx[m.Preload[j].PathID] = c.Name
			}
		}
	}

	return idx, nil
}
