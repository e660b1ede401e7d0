package kontakt

import (
	"fmt"

	"github.com/kelindar/ni-file/internal/streamio"
)

// DecodePreset reads a BPatch header from headerAndBody, then parses the
// structured-object tree held in compressedBody; bytes of headerAndBody
// past the header are not read. If the header is a V42 header whose
// DecompressedLength is non-zero, compressedBody is treated as a
// FastLZ-compressed stream and decompressed first (§4.5 step 2) — the
// case where the outer NISound container framing isn't present to carry
// a separate compression flag.
func DecodePreset(headerAndBody []byte, compressedBody []byte) (*Header, *StructuredObject, error) {
	r := streamio.NewBytes(headerAndBody)
	header, err := ReadHeader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("kontakt: preset header: %w", err)
	}

	body := compressedBody
	if header.V42 != nil && header.V42.DecompressedLength != 0 {
		decoded, err := DecompressPreset(nil, compressedBody)
		if err != nil {
			return nil, nil, fmt.Errorf("kontakt: preset body: %w", err)
		}
		body = decoded
	}

	so, err := ReadStructuredObject(body)
	if err != nil {
		return nil, nil, fmt.Errorf("kontakt: preset structured object: %w", err)
	}

	return header, so, nil
}
