// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"encoding/binary"
	"fmt"
	"io"
)

// TextAsset is the decoded payload of a ClassTextAsset entry.
// Data references the decoded payload buffer.
type TextAsset struct {
	// Name is the asset object name.
	Name string `json:"name"`
	// Data is the raw text body.
	Data []byte `json:"-"`
}

// Texture is the decoded payload of a ClassTexture2D entry.
// Pix references the decoded payload buffer.
type Texture struct {
	// Name is the asset object name.
	Name string `json:"name"`
	// Width is texture width in pixels.
	Width uint32 `json:"width"`
	// Height is texture height in pixels.
	Height uint32 `json:"height"`
	// Format selects the pixel layout of Pix.
	Format PixelFormat `json:"format"`
	// Pix holds rows top to bottom without padding.
	Pix []byte `json:"-"`
}

// Sprite is the decoded payload of a ClassSprite entry.
// It references a rectangle inside a ClassTexture2D entry of the same bundle.
type Sprite struct {
	// Name is the asset object name.
	Name string `json:"name"`
	// TexturePathID is the path id of the backing texture entry.
	TexturePathID int64 `json:"texturePathId"`
	// X is the left edge of the sprite rectangle.
	X uint32 `json:"x"`
	// Y is the top edge of the sprite rectangle.
	Y uint32 `json:"y"`
	// W is the sprite rectangle width in pixels.
	W uint32 `json:"w"`
	// H is the sprite rectangle height in pixels.
	H uint32 `json:"h"`
}

// DecodeText decodes a text asset payload.
func DecodeText(data []byte) (*TextAsset, error) {
	p := payloadReader{buf: data}

	name, err := p.str()
	if err != nil {
		return nil, fmt.Errorf("text name: %w", err)
	}

	length, err := p.u32()
	if err != nil {
		return nil, fmt.Errorf("text length: %w", err)
	}

	body, err := p.take(int(length))
	if err != nil {
		return nil, fmt.Errorf("text body: %w", err)
	}

	if p.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing text bytes", ErrInvalidPayload, p.remaining())
	}

	return &TextAsset{Name: name, Data: body}, nil
}

// EncodeText encodes a text asset payload.
func EncodeText(t *TextAsset) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil text asset", ErrInvalidPayload)
	}

	buf, err := appendString(nil, t.Name)
	if err != nil {
		return nil, fmt.Errorf("text name: %w", err)
	}

	buf = appendU32(buf, uint32(len(t.Data)))
	return append(buf, t.Data...), nil
}

// DecodeTexture decodes a texture payload.
func DecodeTexture(data []byte) (*Texture, error) {
	p := payloadReader{buf: data}
	t := &Texture{}

	var err error
	if t.Name, err = p.str(); err != nil {
		return nil, fmt.Errorf("texture name: %w", err)
	}
	if t.Width, err = p.u32(); err != nil {
		return nil, fmt.Errorf("texture width: %w", err)
	}
	if t.Height, err = p.u32(); err != nil {
		return nil, fmt.Errorf("texture height: %w", err)
	}

	format, err := p.u8()
	if err != nil {
		return nil, fmt.Errorf("texture format: %w", err)
	}

	t.Format = PixelFormat(format)
	bpp, err := t.Format.bytesPerPixel()
	if err != nil {
		return nil, err
	}

	rest := p.remaining()
	if rest%bpp != 0 || uint64(rest/bpp) != uint64(t.Width)*uint64(t.Height) {
		return nil, fmt.Errorf("%w: texture pixel data is %d bytes for %dx%d %s",
			ErrInvalidPayload, rest, t.Width, t.Height, t.Format)
	}

	if t.Pix, err = p.take(rest); err != nil {
		return nil, fmt.Errorf("texture pixels: %w", err)
	}

	return t, nil
}

// EncodeTexture encodes a texture payload.
func EncodeTexture(t *Texture) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil texture", ErrInvalidPayload)
	}

	bpp, err := t.Format.bytesPerPixel()
	if err != nil {
		return nil, err
	}

	if uint64(len(t.Pix)/bpp) != uint64(t.Width)*uint64(t.Height) || len(t.Pix)%bpp != 0 {
		return nil, fmt.Errorf("%w: texture pixel data is %d bytes for %dx%d %s",
			ErrInvalidPayload, len(t.Pix), t.Width, t.Height, t.Format)
	}

	buf, err := appendString(nil, t.Name)
	if err != nil {
		return nil, fmt.Errorf("texture name: %w", err)
	}

	buf = appendU32(buf, t.Width)
	buf = appendU32(buf, t.Height)
	buf = append(buf, byte(t.Format))
	return append(buf, t.Pix...), nil
}

// DecodeSprite decodes a sprite payload.
func DecodeSprite(data []byte) (*Sprite, error) {
	p := payloadReader{buf: data}
	s := &Sprite{}

	var err error
	if s.Name, err = p.str(); err != nil {
		return nil, fmt.Errorf("sprite name: %w", err)
	}
	if s.TexturePathID, err = p.i64(); err != nil {
		return nil, fmt.Errorf("sprite texture path id: %w", err)
	}
	if s.X, err = p.u32(); err != nil {
		return nil, fmt.Errorf("sprite x: %w", err)
	}
	if s.Y, err = p.u32(); err != nil {
		return nil, fmt.Errorf("sprite y: %w", err)
	}
	if s.W, err = p.u32(); err != nil {
		return nil, fmt.Errorf("sprite w: %w", err)
	}
	if s.H, err = p.u32(); err != nil {
		return nil, fmt.Errorf("sprite h: %w", err)
	}

	if p.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing sprite bytes", ErrInvalidPayload, p.remaining())
	}

	return s, nil
}

// EncodeSprite encodes a sprite payload.
func EncodeSprite(s *Sprite) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil sprite", ErrInvalidPayload)
	}

	buf, err := appendString(nil, s.Name)
	if err != nil {
		return nil, fmt.Errorf("sprite name: %w", err)
	}

	buf = appendI64(buf, s.TexturePathID)
	buf = appendU32(buf, s.X)
	buf = appendU32(buf, s.Y)
	buf = appendU32(buf, s.W)
	buf = appendU32(buf, s.H)
	return buf, nil
}

// Text reads and decodes a ClassTextAsset entry payload.
func (r *Reader) Text(info EntryInfo) (*TextAsset, error) {
	if info.Class != ClassTextAsset {
		return nil, fmt.Errorf("%w: path id %d is %s", ErrClassMismatch, info.PathID, info.Class)
	}

	payload, err := r.readEntryPayload(info)
	if err != nil {
		return nil, err
	}

	return DecodeText(payload)
}

// Texture reads and decodes a ClassTexture2D entry payload.
func (r *Reader) Texture(info EntryInfo) (*Texture, error) {
	if info.Class != ClassTexture2D {
		return nil, fmt.Errorf("%w: path id %d is %s", ErrClassMismatch, info.PathID, info.Class)
	}

	payload, err := r.readEntryPayload(info)
	if err != nil {
		return nil, err
	}

	return DecodeTexture(payload)
}

// Sprite reads and decodes a ClassSprite entry payload.
func (r *Reader) Sprite(info EntryInfo) (*Sprite, error) {
	if info.Class != ClassSprite {
		return nil, fmt.Errorf("%w: path id %d is %s", ErrClassMismatch, info.PathID, info.Class)
	}

	payload, err := r.readEntryPayload(info)
	if err != nil {
		return nil, err
	}

	return DecodeSprite(payload)
}

// ItemName reads the leading object name of an entry without decoding the
// full payload. Only ClassTexture2D, ClassSprite and ClassTextAsset payloads
// start with a name.
func (r *Reader) ItemName(info EntryInfo) (string, error) {
	switch info.Class {
	case ClassTexture2D, ClassSprite, ClassTextAsset:
	default:
		return "", fmt.Errorf("%w: %s payload has no leading name", ErrClassMismatch, info.Class)
	}

	rc, err := r.OpenEntryInfo(info)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	var lenBuf [4]byte
	if _, err := io.ReadFull(rc, lenBuf[:]); err != nil {
		return "", fmt.Errorf("read item name length: %w", err)
	}

	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxNameLen {
		return "", fmt.Errorf("%w: %d bytes", ErrNameTooLong, n)
	}

	name := make([]byte, n)
	if _, err := io.ReadFull(rc, name); err != nil {
		return "", fmt.Errorf("read item name: %w", err)
	}

	return string(name), nil
}
