// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package bndl

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// payloadReader walks one decoded payload buffer with bounds-checked field reads.
type payloadReader struct {
	buf []byte
	off int
}

// remaining returns the number of unread bytes.
func (p *payloadReader) remaining() int {
	return len(p.buf) - p.off
}

// take consumes n bytes from the buffer.
func (p *payloadReader) take(n int) ([]byte, error) {
	if n < 0 || p.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidPayload, n, p.remaining())
	}

	out := p.buf[p.off : p.off+n]
	p.off += n
	return out, nil
}

// u8 reads one byte.
func (p *payloadReader) u8() (uint8, error) {
	b, err := p.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// u32 reads one little-endian uint32.
func (p *payloadReader) u32() (uint32, error) {
	b, err := p.take(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// i32 reads one little-endian int32.
func (p *payloadReader) i32() (int32, error) {
	v, err := p.u32()
	if err != nil {
		return 0, err
	}

	return int32(v), nil
}

// i64 reads one little-endian int64.
func (p *payloadReader) i64() (int64, error) {
	b, err := p.take(8)
	if err != nil {
		return 0, err
	}

	return int64(binary.LittleEndian.Uint64(b)), nil
}

// str reads one length-prefixed UTF-8 string.
func (p *payloadReader) str() (string, error) {
	n, err := p.u32()
	if err != nil {
		return "", err
	}
	if n > maxNameLen {
		return "", fmt.Errorf("%w: string length %d", ErrNameTooLong, n)
	}

	b, err := p.take(int(n))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// appendString appends one length-prefixed UTF-8 string to buf.
func appendString(buf []byte, s string) ([]byte, error) {
	if len(s) > maxNameLen {
		return nil, fmt.Errorf("%w: %q", ErrNameTooLong, s)
	}
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: string is not valid UTF-8", ErrInvalidPayload)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...), nil
}

// appendU32 appends one little-endian uint32 to buf.
func appendU32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

// appendI64 appends one little-endian int64 to buf.
func appendI64(buf []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(buf, uint64(v))
}
