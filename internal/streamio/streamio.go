// Package streamio provides typed primitive reads over any byte-oriented
// source, shared by every decoder in this repository so that a container
// item, a BPatch chunk, and an NCW block all read bytes the same way.
package streamio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// Errors returned by the primitive readers. Every failure to read enough
// bytes is reported as ErrUnexpectedEOF, wrapped with the field that was
// being read so callers don't need to guess which read failed.
var (
	ErrUnexpectedEOF = io.ErrUnexpectedEOF
)

// Reader is the contract every decoder in this repository reads through:
// fixed-width little/big-endian integers, raw byte slices, length-prefixed
// "sized data" blocks, booleans, and wide strings.
type Reader struct {
	r io.Reader
}

// New wraps an io.Reader with the primitive-read helpers.
func New(r io.Reader) *Reader {
	return &Reader{r: r}
}

// NewBytes wraps a byte slice for in-memory reads.
func NewBytes(b []byte) *Reader {
	return &Reader{r: bytes.NewReader(b)}
}

// Unwrap returns the underlying io.Reader, for callers that need to hand
// the remaining stream to another component (e.g. a seekable source
// handed to the NCW decoder).
func (r *Reader) Unwrap() io.Reader {
	return r.r
}

func (r *Reader) fill(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("streamio: read %d bytes: %w", n, io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("streamio: read %d bytes: %w", n, err)
	}
	return buf, nil
}

// Bytes reads exactly n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.fill(n)
}

// Bool reads a single byte as a boolean: 0 is false, anything else true.
func (r *Reader) Bool() (bool, error) {
	b, err := r.fill(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// U8 reads a single unsigned byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads a single signed byte.
func (r *Reader) I8() (int8, error) {
	b, err := r.U8()
	return int8(b), err
}

// U16LE reads a little-endian uint16.
func (r *Reader) U16LE() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U16BE reads a big-endian uint16.
func (r *Reader) U16BE() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// I16LE reads a little-endian int16.
func (r *Reader) I16LE() (int16, error) {
	v, err := r.U16LE()
	return int16(v), err
}

// U32LE reads a little-endian uint32.
func (r *Reader) U32LE() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U32BE reads a big-endian uint32.
func (r *Reader) U32BE() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// I32LE reads a little-endian int32.
func (r *Reader) I32LE() (int32, error) {
	v, err := r.U32LE()
	return int32(v), err
}

// U64LE reads a little-endian uint64.
func (r *Reader) U64LE() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// U64BE reads a big-endian uint64.
func (r *Reader) U64BE() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// SizedData reads a u64 length prefix followed by that many bytes.
func (r *Reader) SizedData() ([]byte, error) {
	n, err := r.U64LE()
	if err != nil {
		return nil, fmt.Errorf("streamio: sized data length: %w", err)
	}
	return r.fill(int(n))
}

// WideString reads a u32 character count followed by 2*count UTF-16LE
// bytes, decoding to a Go string.
func (r *Reader) WideString() (string, error) {
	count, err := r.U32LE()
	if err != nil {
		return "", fmt.Errorf("streamio: widestring length: %w", err)
	}

	raw, err := r.fill(int(count) * 2)
	if err != nil {
		return "", fmt.Errorf("streamio: widestring body: %w", err)
	}

	return DecodeUTF16LE(raw)
}

// utf16le is shared by every wide-string decode in this repository so the
// BOM/endianness policy lives in one place.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16LE decodes a raw UTF-16LE byte slice (no length prefix) into a
// Go string.
func DecodeUTF16LE(raw []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("streamio: utf16le decode: %w", err)
	}
	return string(out), nil
}

// FixedASCII reads n bytes and returns them as a string with trailing NUL
// padding trimmed, as used by BPatch header author/URL fields.
func (r *Reader) FixedASCII(n int) (string, error) {
	b, err := r.fill(n)
	if err != nil {
		return "", err
	}
	return TrimNUL(b), nil
}

// TrimNUL trims trailing NUL bytes from a fixed-width ASCII field.
func TrimNUL(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// IndexOfNUL returns the offset of the first NUL byte in b, or -1 if b is
// entirely unterminated.
func IndexOfNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
