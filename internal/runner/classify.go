// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package runner

import (
	"fmt"

	"github.com/asazato/bndl"
	"github.com/asazato/bndl/internal/rules"
)

// Classified describes one enumerated bundle item for reporting and rule
// matching.
type Classified struct {
	// Name is the decoded item name; empty for unsupported items.
	Name string
	// Label is the display type label for reports.
	Label string
	// Kind is the rule kind; KindUnknown for unsupported items.
	Kind rules.Kind
	// Supported reports whether the item can be exported.
	Supported bool
}

// Classify resolves display metadata for one entry.
// Unsupported classes classify successfully with a descriptive label; a name
// decode failure for a supported class is a per-item error.
func Classify(r *bndl.Reader, e bndl.EntryInfo) (Classified, error) {
	var kind rules.Kind
	switch e.Class {
	case bndl.ClassSprite:
		kind = rules.KindSprite
	case bndl.ClassTexture2D:
		kind = rules.KindTexture2D
	case bndl.ClassTextAsset:
		kind = rules.KindText
	default:
		return Classified{Label: fmt.Sprintf("%s (unsupported)", e.Class)}, nil
	}

	name, err := r.ItemName(e)
	if err != nil {
		return Classified{}, fmt.Errorf("read item name: %w", err)
	}

	return Classified{
		Name:      name,
		Label:     kind.String(),
		Kind:      kind,
		Supported: true,
	}, nil
}
