// Package fastlz decodes the FastLZ-style literal/back-reference opcode
// stream used for selected NI preset payloads.
//
// The control-byte convention implemented here follows the classic
// LZF/FastLZ family of compressors: a control byte below 0x20 introduces a
// literal run, anything at or above it introduces a back-reference whose
// length and offset are packed across the control byte and the bytes that
// follow it. The corpus this repository's parsing model was reverse
// engineered from never settled on a reference decoder for this opcode
// stream (see the "cb"/"offset" modules referenced but not kept in the
// original source), so this is the conventional encoding for the tool
// family the format borrows its name from, not a byte-for-byte port of
// anything in this codebase.
package fastlz

import (
	"fmt"

	"github.com/kelindar/ni-file/internal/nierr"
)

// ErrDecompression is returned when the opcode stream is malformed or a
// back-reference points outside the bytes produced so far. It wraps the
// shared nierr.ErrDecompression sentinel.
var ErrDecompression = nierr.ErrDecompression

// Decode decompresses src, appending the result after header, which seeds
// the output buffer so that back-references can target bytes the caller
// already knows about (the "uncompressed header prefix" in the spec).
// Decoding stops when src is exhausted; it never reads count or length
// information from outside src.
func Decode(header, src []byte) ([]byte, error) {
	out := make([]byte, len(header), len(header)+len(src)*2)
	copy(out, header)

	pos := 0
	for pos < len(src) {
		ctrl := src[pos]
		pos++

		switch {
		case ctrl < 0x20:
			// Literal run: ctrl+1 raw bytes follow.
			length := int(ctrl) + 1
			if pos+length > len(src) {
				return nil, fmt.Errorf("%w: literal run of %d exceeds input", ErrDecompression, length)
			}
			out = append(out, src[pos:pos+length]...)
			pos += length

		default:
			// Dictionary back-reference.
			length := int(ctrl >> 5)
			if length == 7 {
				if pos >= len(src) {
					return nil, fmt.Errorf("%w: truncated extended length", ErrDecompression)
				}
				length += int(src[pos])
				pos++
			}
			length += 2

			if pos >= len(src) {
				return nil, fmt.Errorf("%w: truncated back-reference offset", ErrDecompression)
			}
			offset := (int(ctrl&0x1F) << 8) | int(src[pos])
			pos++
			offset++ // offsets are 1-based distance from the current end

			if offset > len(out) {
				return nil, fmt.Errorf("%w: back-reference offset %d exceeds output length %d", ErrDecompression, offset, len(out))
			}

			// Byte-by-byte copy so overlapping runs (offset < length)
			// replicate the source's run-extension behavior.
			src := len(out) - offset
			for i := 0; i < length; i++ {
				out = append(out, out[src+i])
			}
		}
	}

	return out, nil
}
