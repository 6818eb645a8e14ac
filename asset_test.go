package bndl

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()

	in := &TextAsset{Name: "notes/readme", Data: []byte("line one\nline two\n")}
	payload, err := EncodeText(in)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}

	out, err := DecodeText(payload)
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if out.Name != in.Name || !bytes.Equal(out.Data, in.Data) {
		t.Fatalf("round trip: %+v", out)
	}
}

func TestDecodeText_Malformed(t *testing.T) {
	t.Parallel()

	valid, err := EncodeText(&TextAsset{Name: "a", Data: []byte("abcdef")})
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "truncated body", payload: valid[:len(valid)-2]},
		{name: "trailing bytes", payload: append(append([]byte{}, valid...), 0xAA)},
		{name: "length past end", payload: func() []byte {
			p := append([]byte{}, valid...)
			p[5+4-1] = 0xFF // body length field high byte
			return p
		}()},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := DecodeText(tc.payload); !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestEncodeText_NameTooLong(t *testing.T) {
	t.Parallel()

	_, err := EncodeText(&TextAsset{Name: strings.Repeat("x", maxNameLen+1)})
	if !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
}

func TestTextureRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		tex  *Texture
	}{
		{
			name: "rgba8",
			tex: &Texture{
				Name:   "ui/button",
				Width:  2,
				Height: 2,
				Format: PixelFormatRGBA8,
				Pix:    bytes.Repeat([]byte{0x10, 0x20, 0x30, 0xFF}, 4),
			},
		},
		{
			name: "gray8",
			tex: &Texture{
				Name:   "mask",
				Width:  3,
				Height: 1,
				Format: PixelFormatGray8,
				Pix:    []byte{0x00, 0x7F, 0xFF},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload, err := EncodeTexture(tc.tex)
			if err != nil {
				t.Fatalf("EncodeTexture: %v", err)
			}

			out, err := DecodeTexture(payload)
			if err != nil {
				t.Fatalf("DecodeTexture: %v", err)
			}
			if out.Name != tc.tex.Name || out.Width != tc.tex.Width || out.Height != tc.tex.Height ||
				out.Format != tc.tex.Format || !bytes.Equal(out.Pix, tc.tex.Pix) {
				t.Fatalf("round trip: %+v", out)
			}
		})
	}
}

func TestDecodeTexture_PixelCountMismatch(t *testing.T) {
	t.Parallel()

	payload, err := EncodeTexture(&Texture{
		Name:   "t",
		Width:  2,
		Height: 2,
		Format: PixelFormatGray8,
		Pix:    make([]byte, 4),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeTexture(append(payload, 0x00)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if _, err := DecodeTexture(payload[:len(payload)-1]); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestDecodeTexture_UnknownPixelFormat(t *testing.T) {
	t.Parallel()

	buf, err := appendString(nil, "t")
	if err != nil {
		t.Fatal(err)
	}
	buf = appendU32(buf, 1)
	buf = appendU32(buf, 1)
	buf = append(buf, 9)
	buf = append(buf, 0xAB)

	if _, err := DecodeTexture(buf); !errors.Is(err, ErrUnknownPixelFormat) {
		t.Fatalf("expected ErrUnknownPixelFormat, got %v", err)
	}
}

func TestSpriteRoundTrip(t *testing.T) {
	t.Parallel()

	in := &Sprite{Name: "icons/save", TexturePathID: -42, X: 1, Y: 2, W: 3, H: 4}
	payload, err := EncodeSprite(in)
	if err != nil {
		t.Fatalf("EncodeSprite: %v", err)
	}

	out, err := DecodeSprite(payload)
	if err != nil {
		t.Fatalf("DecodeSprite: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip: %+v", out)
	}

	if _, err := DecodeSprite(append(payload, 0x00)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for trailing bytes, got %v", err)
	}
	if _, err := DecodeSprite(payload[:len(payload)-1]); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for truncation, got %v", err)
	}
}

// buildTypedBundle writes a bundle holding one encoded entry per supported class.
func buildTypedBundle(t *testing.T) string {
	t.Helper()

	text, err := EncodeText(&TextAsset{Name: "readme", Data: []byte("hi")})
	if err != nil {
		t.Fatal(err)
	}
	tex, err := EncodeTexture(&Texture{
		Name: "atlas", Width: 1, Height: 1, Format: PixelFormatRGBA8, Pix: []byte{1, 2, 3, 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	sprite, err := EncodeSprite(&Sprite{Name: "icon", TexturePathID: 2, W: 1, H: 1})
	if err != nil {
		t.Fatal(err)
	}

	return writeBundleFile(t, buildBundleBytes(t, []rawEntry{
		{pathID: 1, class: ClassTextAsset, payload: text},
		{pathID: 2, class: ClassTexture2D, payload: tex},
		{pathID: 3, class: ClassSprite, payload: sprite},
	}))
}

func TestReader_TypedDecoders(t *testing.T) {
	t.Parallel()

	r, err := Open(buildTypedBundle(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	entries := r.Entries()

	text, err := r.Text(entries[0])
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text.Name != "readme" || string(text.Data) != "hi" {
		t.Fatalf("text: %+v", text)
	}

	tex, err := r.Texture(entries[1])
	if err != nil {
		t.Fatalf("Texture: %v", err)
	}
	if tex.Name != "atlas" || tex.Width != 1 || tex.Format != PixelFormatRGBA8 {
		t.Fatalf("texture: %+v", tex)
	}

	sprite, err := r.Sprite(entries[2])
	if err != nil {
		t.Fatalf("Sprite: %v", err)
	}
	if sprite.Name != "icon" || sprite.TexturePathID != 2 {
		t.Fatalf("sprite: %+v", sprite)
	}
}

func TestReader_TypedDecoderClassMismatch(t *testing.T) {
	t.Parallel()

	r, err := Open(buildTypedBundle(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	entries := r.Entries()

	if _, err := r.Text(entries[1]); !errors.Is(err, ErrClassMismatch) {
		t.Fatalf("Text on texture entry: %v", err)
	}
	if _, err := r.Texture(entries[0]); !errors.Is(err, ErrClassMismatch) {
		t.Fatalf("Texture on text entry: %v", err)
	}
	if _, err := r.Sprite(entries[0]); !errors.Is(err, ErrClassMismatch) {
		t.Fatalf("Sprite on text entry: %v", err)
	}
}

func TestItemName(t *testing.T) {
	t.Parallel()

	r, err := Open(buildTypedBundle(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	want := []string{"readme", "atlas", "icon"}
	for i, e := range r.Entries() {
		name, err := r.ItemName(e)
		if err != nil {
			t.Fatalf("ItemName(%d): %v", i, err)
		}
		if name != want[i] {
			t.Fatalf("ItemName(%d)=%q, want %q", i, name, want[i])
		}
	}
}

func TestItemName_ManifestHasNoName(t *testing.T) {
	t.Parallel()

	payload, err := EncodeManifest(&Manifest{})
	if err != nil {
		t.Fatal(err)
	}

	r, err := Open(writeBundleFile(t, buildBundleBytes(t, []rawEntry{
		{pathID: 1, class: ClassManifest, payload: payload},
	})))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	_, err = r.ItemName(r.Entries()[0])
	if !errors.Is(err, ErrClassMismatch) {
		t.Fatalf("expected ErrClassMismatch, got %v", err)
	}
}

func TestItemName_DeclaredLengthTooLong(t *testing.T) {
	t.Parallel()

	payload := appendU32(nil, maxNameLen+1)
	payload = append(payload, bytes.Repeat([]byte{'x'}, maxNameLen+1)...)

	r, err := Open(writeBundleFile(t, buildBundleBytes(t, []rawEntry{
		{pathID: 1, class: ClassTextAsset, payload: payload},
	})))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	_, err = r.ItemName(r.Entries()[0])
	if !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
}
