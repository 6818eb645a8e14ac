// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/asazato/bndl"
	"github.com/asazato/bndl/internal/rules"
)

// ensureParentDir creates the parent directory chain for one output path.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	return nil
}

// exportItem decodes one supported item and writes it to outPath.
// Images are encoded by output extension; text assets are written verbatim.
func exportItem(r *bndl.Reader, e bndl.EntryInfo, kind rules.Kind, outPath string) error {
	switch kind {
	case rules.KindSprite:
		img, err := r.SpriteImage(e)
		if err != nil {
			return err
		}

		return bndl.SaveImage(img, outPath)
	case rules.KindTexture2D:
		tex, err := r.Texture(e)
		if err != nil {
			return err
		}

		img, err := tex.Image()
		if err != nil {
			return err
		}

		return bndl.SaveImage(img, outPath)
	case rules.KindText:
		txt, err := r.Text(e)
		if err != nil {
			return err
		}

		if err := os.WriteFile(outPath, txt.Data, 0o600); err != nil {
			return fmt.Errorf("write text asset: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("kind %s is not exportable", kind)
	}
}
