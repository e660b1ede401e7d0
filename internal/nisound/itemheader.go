package nisound

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kelindar/ni-file/internal/nierr"
	"github.com/kelindar/ni-file/internal/streamio"
)

const itemHeaderSize = 40

var itemHeaderMagic = [4]byte{'h', 's', 'i', 'n'}

// ItemHeader is the fixed 40-byte header at the front of every Item.
type ItemHeader struct {
	Length      uint64
	Version     uint32
	Magic       [4]byte
	HeaderFlags uint32
	Reserved    uint32
	UUID        uuid.UUID
}

// DeferredFlag returns the low bit of HeaderFlags, the only documented flag.
func (h ItemHeader) DeferredFlag() uint32 {
	return h.HeaderFlags & 0x00000001
}

func parseItemHeader(r *streamio.Reader) (ItemHeader, error) {
	var h ItemHeader

	var err error
	if h.Length, err = r.U64LE(); err != nil {
		return h, fmt.Errorf("nisound: item header length: %w", err)
	}
	if h.Version, err = r.U32LE(); err != nil {
		return h, fmt.Errorf("nisound: item header version: %w", err)
	}
	magic, err := r.Bytes(4)
	if err != nil {
		return h, fmt.Errorf("nisound: item header magic: %w", err)
	}
	copy(h.Magic[:], magic)
	if h.HeaderFlags, err = r.U32LE(); err != nil {
		return h, fmt.Errorf("nisound: item header flags: %w", err)
	}
	if h.Reserved, err = r.U32LE(); err != nil {
		return h, fmt.Errorf("nisound: item header reserved: %w", err)
	}
	rawUUID, err := r.Bytes(16)
	if err != nil {
		return h, fmt.Errorf("nisound: item header uuid: %w", err)
	}
	copy(h.UUID[:], rawUUID)

	if h.Magic != itemHeaderMagic {
		return h, fmt.Errorf("%w: item header magic %q", nierr.ErrBadMagic, h.Magic[:])
	}
	if h.Version != 1 {
		return h, fmt.Errorf("%w: item header version %d", nierr.ErrUnsupportedVersion, h.Version)
	}

	return h, nil
}
