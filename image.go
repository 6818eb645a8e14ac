// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// subImager is implemented by pixel image types that can share a cropped view.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// bytesPerPixel returns the encoded size of one pixel.
func (f PixelFormat) bytesPerPixel() (int, error) {
	switch f {
	case PixelFormatRGBA8:
		return 4, nil
	case PixelFormatGray8:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownPixelFormat, uint8(f))
	}
}

// Image wraps texture pixels as a stdlib image without copying.
func (t *Texture) Image() (image.Image, error) {
	bpp, err := t.Format.bytesPerPixel()
	if err != nil {
		return nil, err
	}

	need := uint64(t.Width) * uint64(t.Height)
	if need > uint64(math.MaxInt)/uint64(bpp) {
		return nil, fmt.Errorf("%w: texture %dx%d", ErrSizeOverflow, t.Width, t.Height)
	}

	if uint64(len(t.Pix)) != need*uint64(bpp) {
		return nil, fmt.Errorf("%w: texture pixel data is %d bytes for %dx%d %s",
			ErrInvalidPayload, len(t.Pix), t.Width, t.Height, t.Format)
	}

	w, h := int(t.Width), int(t.Height)
	rect := image.Rect(0, 0, w, h)

	switch t.Format {
	case PixelFormatRGBA8:
		return &image.NRGBA{Pix: t.Pix, Stride: 4 * w, Rect: rect}, nil
	case PixelFormatGray8:
		return &image.Gray{Pix: t.Pix, Stride: w, Rect: rect}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPixelFormat, uint8(t.Format))
	}
}

// NewTexture converts any stdlib image into an RGBA8 texture payload value.
func NewTexture(name string, img image.Image) *Texture {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return &Texture{
		Name:   name,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: PixelFormatRGBA8,
		Pix:    dst.Pix,
	}
}

// SpriteImage decodes a ClassSprite entry and crops its rectangle out of the
// backing texture entry in the same bundle. The returned image shares pixel
// memory with the decoded texture.
func (r *Reader) SpriteImage(info EntryInfo) (image.Image, error) {
	s, err := r.Sprite(info)
	if err != nil {
		return nil, err
	}

	texInfo := r.findEntryByID(s.TexturePathID)
	if texInfo == nil || texInfo.Class != ClassTexture2D {
		return nil, fmt.Errorf("%w: sprite %q references path id %d", ErrTextureNotFound, s.Name, s.TexturePathID)
	}

	tex, err := r.Texture(*texInfo)
	if err != nil {
		return nil, err
	}

	img, err := tex.Image()
	if err != nil {
		return nil, err
	}

	x0, y0 := int64(s.X), int64(s.Y)
	x1, y1 := x0+int64(s.W), y0+int64(s.H)
	if x1 > int64(tex.Width) || y1 > int64(tex.Height) {
		return nil, fmt.Errorf("%w: sprite %q rect %dx%d+%d+%d outside %dx%d texture",
			ErrInvalidPayload, s.Name, s.W, s.H, s.X, s.Y, tex.Width, tex.Height)
	}

	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("%w: texture image does not support cropping", ErrInvalidPayload)
	}

	return si.SubImage(image.Rect(int(x0), int(y0), int(x1), int(y1))), nil
}

// SaveImage encodes an image to the path, selecting the codec by extension.
// Supported: .png (default), .jpg, .jpeg, .bmp, .tif, .tiff.
func SaveImage(img image.Image, path string) error {
	f, err := os.Create(path) //nolint:gosec // Path is sanitized by callers.
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, nil)
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}

	if err != nil {
		_ = f.Close()
		return fmt.Errorf("encode image: %w", err)
	}

	return f.Close()
}
