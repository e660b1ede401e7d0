package kontakt

import (
	"fmt"

	"github.com/kelindar/ni-file/internal/fastlz"
	"github.com/kelindar/ni-file/internal/nierr"
	"github.com/kelindar/ni-file/internal/streamio"
)

// Total on-wire sizes, including the leading 2-byte header_version
// selector, for each BPatch header version.
const (
	headerV1Size  = 36
	headerV2Size  = 170
	headerV42Size = 222
)

// Magics for the versions that carry one, both read little-endian: V2's
// appears on the wire as 3E 01 2A 72, V42's as 1A 63 37 EA.
const (
	headerMagicV2  = 0x722A013E
	headerMagicV42 = 0xEA37631A
)

// Header is the sum type produced by ReadHeader: exactly one of V1, V2, or
// V42 is non-nil, selected by the leading header_version field.
type Header struct {
	V1  *HeaderV1
	V2  *HeaderV2
	V42 *HeaderV42
}

// HeaderV1 is the Kontakt 1-era patch header (36 bytes total).
type HeaderV1 struct {
	Version     uint16
	UA, UB, UC  uint32
	CreatedAt   uint32 // unix seconds
	SamplesSize uint32
	UD          uint32
	Reserved    []byte
}

// HeaderV2 is the Kontakt 2-era patch header (170 bytes total).
type HeaderV2 struct {
	PatchType            PatchType
	PatchVersion          AppVersion
	AppSignature         string
	CreatedAt            uint32
	UA                   uint32
	NumberOfZones        uint16
	NumberOfGroups        uint16
	NumberOfInstruments  uint16
	PCMDataLen           uint32
	IsMonolith           bool
	MinSupportedVersion  AppVersion
	UC                   uint32
	CatIconIdx           uint32
	InstrumentAuthor     string
	InstrumentCat1       uint8
	InstrumentCat2       uint8
	InstrumentCat3       uint8
	InstrumentURL        string
	UB                   uint32
	PatchLevel           uint32
	SvnRevision          uint32
	Reserved             []byte
}

// HeaderV42 is the Kontakt 4.2+ patch header (222 bytes total).
type HeaderV42 struct {
	PatchType           PatchType
	PatchVersion        AppVersion
	AppSignature        string
	CreatedAt           uint32
	UA                  uint32
	NumberOfZones       uint16
	NumberOfGroups      uint16
	NumberOfInstruments uint16
	PCMDataLen          uint32
	IsMonolith          bool
	MinSupportedVersion AppVersion
	UC                  uint32
	CatIconIdx          uint32
	InstrumentAuthor    string
	InstrumentCat1      uint8
	InstrumentCat2      uint8
	InstrumentCat3      uint8
	InstrumentURL       string
	UB                  uint32
	Flags               uint32
	MD5Checksum         [16]byte
	SvnRevision         uint32
	CRC32Fast           uint32
	DecompressedLength  uint32
	Reserved            []byte
}

// ReadHeader reads the leading u16 header_version and dispatches to the
// matching layout: 0..255 -> V1, 256..271 -> V2, >=272 -> V42.
func ReadHeader(r *streamio.Reader) (*Header, error) {
	version, err := r.U16LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: header version: %w", err)
	}

	switch {
	case version <= 255:
		h, err := readHeaderV1(r, version)
		if err != nil {
			return nil, err
		}
		return &Header{V1: h}, nil
	case version <= 271:
		h, err := readHeaderV2(r)
		if err != nil {
			return nil, err
		}
		return &Header{V2: h}, nil
	default:
		h, err := readHeaderV42(r)
		if err != nil {
			return nil, err
		}
		return &Header{V42: h}, nil
	}
}

// readAppVersion reads the reversed minor3/minor2/minor1/major byte order
// used by every header version.
func readAppVersion(r *streamio.Reader) (AppVersion, error) {
	var v AppVersion
	var err error
	if v.Minor3, err = r.U8(); err != nil {
		return v, err
	}
	if v.Minor2, err = r.U8(); err != nil {
		return v, err
	}
	if v.Minor1, err = r.U8(); err != nil {
		return v, err
	}
	if v.Major, err = r.U8(); err != nil {
		return v, err
	}
	return v, nil
}

// readReversedSignature reads a 4-byte app signature stored back to front.
func readReversedSignature(r *streamio.Reader) (string, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return "", err
	}
	rev := make([]byte, 4)
	for i, c := range b {
		rev[3-i] = c
	}
	return string(rev), nil
}

func readHeaderV1(r *streamio.Reader, outerVersion uint16) (*HeaderV1, error) {
	const consumedBeforeReserved = 2 /* outer selector */ + 4 + 4 + 4 + 4 + 4 + 4

	h := &HeaderV1{Version: outerVersion}
	var err error
	if h.UA, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV1 u_a: %w", err)
	}
	if h.UB, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV1 u_b: %w", err)
	}
	if h.UC, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV1 u_c: %w", err)
	}
	if h.CreatedAt, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV1 created_at: %w", err)
	}
	if h.SamplesSize, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV1 samples_size: %w", err)
	}
	if h.UD, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV1 u_d: %w", err)
	}

	// The reverse-engineered field layout above accounts for fewer bytes
	// than the header's documented total size in every known version;
	// the gap is preserved raw rather than guessed at.
	if remaining := headerV1Size - consumedBeforeReserved; remaining > 0 {
		reserved, err := r.Bytes(remaining)
		if err != nil {
			return nil, fmt.Errorf("kontakt: headerV1 reserved tail: %w", err)
		}
		h.Reserved = reserved
	}

	return h, nil
}

func readHeaderV2(r *streamio.Reader) (*HeaderV2, error) {
	magic, err := r.U32LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 magic: %w", err)
	}
	if magic != headerMagicV2 {
		return nil, fmt.Errorf("%w: headerV2 magic %#08x", nierr.ErrBadMagic, magic)
	}

	h := &HeaderV2{}
	consumed := 2 + 4 // outer selector + magic

	patchType, err := r.U16LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 patch type: %w", err)
	}
	h.PatchType = NewPatchType(patchType)
	consumed += 2

	if h.PatchVersion, err = readAppVersion(r); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 patch version: %w", err)
	}
	consumed += 4

	if h.AppSignature, err = readReversedSignature(r); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 app signature: %w", err)
	}
	consumed += 4

	if h.CreatedAt, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 created_at: %w", err)
	}
	consumed += 4

	if h.UA, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 u_a: %w", err)
	}
	consumed += 4

	if h.NumberOfZones, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 number_of_zones: %w", err)
	}
	if h.NumberOfGroups, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 number_of_groups: %w", err)
	}
	if h.NumberOfInstruments, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 number_of_instruments: %w", err)
	}
	consumed += 6

	if h.PCMDataLen, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 pcm_data_len: %w", err)
	}
	consumed += 4

	monolith, err := r.U32LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 is_monolith: %w", err)
	}
	h.IsMonolith = monolith == 1
	consumed += 4

	if h.MinSupportedVersion, err = readAppVersion(r); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 min_supported_version: %w", err)
	}
	consumed += 4

	if h.UC, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 u_c: %w", err)
	}
	consumed += 4

	if h.CatIconIdx, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 cat_icon_idx: %w", err)
	}
	consumed += 4

	author, err := r.FixedASCII(8)
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 instrument_author: %w", err)
	}
	h.InstrumentAuthor = author
	consumed += 8

	if h.InstrumentCat1, err = r.U8(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 instrument_cat1: %w", err)
	}
	if h.InstrumentCat2, err = r.U8(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 instrument_cat2: %w", err)
	}
	if h.InstrumentCat3, err = r.U8(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 instrument_cat3: %w", err)
	}
	consumed += 3

	url, err := r.FixedASCII(85)
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 instrument_url: %w", err)
	}
	h.InstrumentURL = url
	consumed += 85

	if h.UB, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 u_b: %w", err)
	}
	consumed += 4

	if h.PatchLevel, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 patch_level: %w", err)
	}
	consumed += 4

	if h.SvnRevision, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV2 svn_revision: %w", err)
	}
	consumed += 4

	// Per the open question on V2's trailing field: some samples carry an
	// extra unknown_offset word and some don't. Rather than guess, skip
	// straight to the header's fixed 170-byte boundary.
	if remaining := headerV2Size - consumed; remaining > 0 {
		reserved, err := r.Bytes(remaining)
		if err != nil {
			return nil, fmt.Errorf("kontakt: headerV2 reserved tail: %w", err)
		}
		h.Reserved = reserved
	}

	return h, nil
}

func readHeaderV42(r *streamio.Reader) (*HeaderV42, error) {
	magic, err := r.U32LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 magic: %w", err)
	}
	if magic != headerMagicV42 {
		return nil, fmt.Errorf("%w: headerV42 magic %#08x", nierr.ErrBadMagic, magic)
	}

	h := &HeaderV42{}
	consumed := 2 + 4

	patchType, err := r.U16LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 patch type: %w", err)
	}
	h.PatchType = NewPatchType(patchType)
	consumed += 2

	if h.PatchVersion, err = readAppVersion(r); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 patch version: %w", err)
	}
	consumed += 4

	if h.AppSignature, err = readReversedSignature(r); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 app signature: %w", err)
	}
	consumed += 4

	if h.CreatedAt, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 created_at: %w", err)
	}
	consumed += 4

	if h.UA, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 u_a: %w", err)
	}
	if h.UA != 0 {
		return nil, fmt.Errorf("kontakt: headerV42 u_a must be 0, got %d", h.UA)
	}
	consumed += 4

	if h.NumberOfZones, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 number_of_zones: %w", err)
	}
	if h.NumberOfGroups, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 number_of_groups: %w", err)
	}
	if h.NumberOfInstruments, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 number_of_instruments: %w", err)
	}
	consumed += 6

	if h.PCMDataLen, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 pcm_data_len: %w", err)
	}
	consumed += 4

	monolith, err := r.U32LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 is_monolith: %w", err)
	}
	h.IsMonolith = monolith == 1
	consumed += 4

	if h.MinSupportedVersion, err = readAppVersion(r); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 min_supported_version: %w", err)
	}
	consumed += 4

	if h.UC, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 u_c: %w", err)
	}
	consumed += 4

	if h.CatIconIdx, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 cat_icon_idx: %w", err)
	}
	consumed += 4

	author, err := r.FixedASCII(8)
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 instrument_author: %w", err)
	}
	h.InstrumentAuthor = author
	consumed += 8

	if h.InstrumentCat1, err = r.U8(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 instrument_cat1: %w", err)
	}
	if h.InstrumentCat2, err = r.U8(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 instrument_cat2: %w", err)
	}
	if h.InstrumentCat3, err = r.U8(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 instrument_cat3: %w", err)
	}
	consumed += 3

	url, err := r.FixedASCII(85)
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 instrument_url: %w", err)
	}
	h.InstrumentURL = url
	consumed += 85

	if h.UB, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 u_b: %w", err)
	}
	consumed += 4

	if h.Flags, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 flags: %w", err)
	}
	consumed += 4

	md5, err := r.Bytes(16)
	if err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 md5_checksum: %w", err)
	}
	copy(h.MD5Checksum[:], md5)
	consumed += 16

	if h.SvnRevision, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 svn_revision: %w", err)
	}
	consumed += 4

	if h.CRC32Fast, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 crc32_fast: %w", err)
	}
	consumed += 4

	if h.DecompressedLength, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: headerV42 decompressed_length: %w", err)
	}
	consumed += 4

	// The named fields end 40 bytes short of the header's fixed 222-byte
	// size: the 32 trailing zero-pad bytes plus 8 unexplained bytes (V1 and
	// V2 leave unexplained tails of 10 and 12 bytes). All 40 are kept raw.
	if remaining := headerV42Size - consumed; remaining > 0 {
		reserved, err := r.Bytes(remaining)
		if err != nil {
			return nil, fmt.Errorf("kontakt: headerV42 reserved tail: %w", err)
		}
		h.Reserved = reserved
	}

	return h, nil
}

// DecompressPreset decompresses header-following preset chunk bytes that
// are FastLZ-compressed, seeded with the given uncompressed header prefix.
func DecompressPreset(header, compressed []byte) ([]byte, error) {
	out, err := fastlz.Decode(header, compressed)
	if err != nil {
		return nil, fmt.Errorf("kontakt: decompress preset: %w", err)
	}
	return out, nil
}
