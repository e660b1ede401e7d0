package kontakt

import "fmt"

// PatchType identifies the kind of patch a BPatch header describes.
type PatchType uint16

// Known patch types, matching the header's patch_type field.
const (
	PatchTypeNKM PatchType = iota
	PatchTypeNKI
	PatchTypeNKB
	PatchTypeNKP
	PatchTypeNKG
	PatchTypeNKZ
)

// NewPatchType maps a raw u16 to a PatchType, preserving unrecognized
// values rather than failing.
func NewPatchType(v uint16) PatchType {
	return PatchType(v)
}

func (p PatchType) String() string {
	switch p {
	case PatchTypeNKM:
		return "NKM"
	case PatchTypeNKI:
		return "NKI"
	case PatchTypeNKB:
		return "NKB"
	case PatchTypeNKP:
		return "NKP"
	case PatchTypeNKG:
		return "NKG"
	case PatchTypeNKZ:
		return "NKZ"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(p))
	}
}

// Known reports whether p is one of the named constants above.
func (p PatchType) Known() bool {
	return p <= PatchTypeNKZ
}

// Description returns a human-readable label, matching the reference
// tool's FileTypeProxy description.
func (p PatchType) Description() string {
	switch p {
	case PatchTypeNKB:
		return "Bank"
	case PatchTypeNKG:
		return "Group"
	case PatchTypeNKI:
		return "Instrument"
	case PatchTypeNKM:
		return "Multi"
	case PatchTypeNKP:
		return "Preset"
	case PatchTypeNKZ:
		return "Archive"
	default:
		return "?"
	}
}

// AppVersion is the four-part major.minor1.minor2.minor3 version number
// stamped on a patch.
type AppVersion struct {
	Major  uint8
	Minor1 uint8
	Minor2 uint8
	Minor3 uint8
}

func (v AppVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor1, v.Minor2, v.Minor3)
}
