package nisound

import (
	"fmt"

	"github.com/kelindar/intmap"
)

// RepositoryRoot wraps an Item whose outermost frame is RepositoryRoot:
// authorization metadata plus the root subtree's children.
type RepositoryRoot struct{ Item *Item }

// Authorization returns the wrapped Authorization frame's raw payload, if
// the root carries one in its frame chain.
func (r RepositoryRoot) Authorization() ([]byte, bool) {
	if r.Item.Frames == nil {
		return nil, false
	}
	f := r.Item.Frames.Find(ItemIDAuthorization)
	if f == nil {
		return nil, false
	}
	return f.Data, true
}

// BNISoundPreset wraps an Item carrying a BNISoundHeader, an
// EncryptionItem (whose subtree holds the PresetChunkItem), and sibling
// children.
type BNISoundPreset struct{ Item *Item }

// Header returns the raw BPatchHeaderV42 bytes carried by the
// BNISoundHeader frame, for the caller to hand to the kontakt package.
func (p BNISoundPreset) Header() ([]byte, error) {
	if p.Item.Frames == nil {
		return nil, fmt.Errorf("nisound: BNISoundPreset has no frame stack")
	}
	f := p.Item.Frames.Find(ItemIDBNISoundHeader)
	if f == nil {
		return nil, fmt.Errorf("nisound: BNISoundPreset missing BNISoundHeader frame")
	}
	return f.Data, nil
}

// EncryptionItem returns the EncryptionItem frame's raw payload, whose
// subtree contains the PresetChunkItem.
func (p BNISoundPreset) EncryptionItem() ([]byte, error) {
	if p.Item.Frames == nil {
		return nil, fmt.Errorf("nisound: BNISoundPreset has no frame stack")
	}
	f := p.Item.Frames.Find(ItemIDEncryptionItem)
	if f == nil {
		return nil, fmt.Errorf("nisound: BNISoundPreset missing EncryptionItem frame")
	}
	return f.Data, nil
}

// PresetChunk returns the raw bytes of the PresetChunkItem nested beneath
// the encryption item's children, if present. The encryption item's
// payload is passed through opaquely (no cryptographic verification is
// performed), per the preset-chunk item being the sole consumer of its
// subtree.
func (p BNISoundPreset) PresetChunk() ([]byte, error) {
	encItem := p.Item.FindChild(ItemIDEncryptionItem)
	if encItem == nil {
		return nil, fmt.Errorf("nisound: BNISoundPreset has no EncryptionItem child")
	}
	chunkItem := encItem.FindChild(ItemIDPresetChunkItem)
	if chunkItem == nil {
		return nil, fmt.Errorf("nisound: EncryptionItem has no PresetChunkItem child")
	}
	if chunkItem.Frames == nil {
		return nil, fmt.Errorf("nisound: PresetChunkItem has no frame stack")
	}
	return chunkItem.Frames.Data, nil
}

// SoundInfoItem carries descriptive metadata: name, tags, author.
type SoundInfoItem struct{ Item *Item }

// Raw returns the SoundInfoItem's undecoded payload bytes. The exact
// layout of name/tags/author fields within it was not recoverable from
// the corpus this decoder is grounded on; callers that need individual
// fields should parse Raw with streamio directly once the layout is
// confirmed against real samples.
func (s SoundInfoItem) Raw() []byte {
	if s.Item.Frames == nil {
		return nil
	}
	return s.Item.Frames.Data
}

// ExternalFileReference resolves to a filename via index into a filename
// table the caller supplies (the table itself lives in a BPatch child, so
// resolution happens at the kontakt layer).
type ExternalFileReference struct{ Item *Item }

// FilenameIndex reads the u32 filename-table index carried by the
// reference's payload.
func (e ExternalFileReference) FilenameIndex() (uint32, error) {
	if e.Item.Frames == nil || len(e.Item.Frames.Data) < 4 {
		return 0, fmt.Errorf("nisound: ExternalFileReference payload too short")
	}
	b := e.Item.Frames.Data
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// Unsupported wraps an Item whose outermost ItemID was not recognized.
// The raw bytes are preserved verbatim rather than discarding the item.
type Unsupported struct {
	ID   ItemID
	Item *Item
}

// payloadDecoders holds the registered wrapper constructors, indexed by
// the slot recorded in payloadRegistry.
var payloadDecoders []func(*Item) any

// payloadRegistry maps an ItemID to an index into payloadDecoders, the
// same shape as the teacher's MUL/UOP entry lookup: a dispatch table
// built once and queried per item, so adding a payload type is one
// RegisterPayload call instead of a new switch branch.
var payloadRegistry = intmap.New(8, .95)

// RegisterPayload associates id with a wrapper constructor. Called from
// init for every payload type this package knows about.
func RegisterPayload(id ItemID, decode func(*Item) any) {
	idx := uint32(len(payloadDecoders))
	payloadDecoders = append(payloadDecoders, decode)
	payloadRegistry.Store(uint32(id), idx)
}

func init() {
	RegisterPayload(ItemIDRepositoryRoot, func(it *Item) any { return RepositoryRoot{Item: it} })
	RegisterPayload(ItemIDBNISoundPreset, func(it *Item) any { return BNISoundPreset{Item: it} })
	RegisterPayload(ItemIDSoundInfoItem, func(it *Item) any { return SoundInfoItem{Item: it} })
	RegisterPayload(ItemIDExternalFileReference, func(it *Item) any { return ExternalFileReference{Item: it} })
}

// AsPayload dispatches it to its named wrapper type when its outermost
// ItemID is registered, or Unsupported otherwise.
func AsPayload(it *Item) any {
	id := it.PayloadID()
	if idx, ok := payloadRegistry.Load(uint32(id)); ok {
		return payloadDecoders[idx](it)
	}
	return Unsupported{ID: id, Item: it}
}
