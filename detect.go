// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package nifile decodes the proprietary container formats used by a
// family of music-production sample instruments: a recursive NISound
// item container, a legacy BPatch/structured-object patch format, and
// the NCW lossless PCM codec used for sample payloads.
package nifile

// FileType enumerates the container formats Detect can recognize from a
// file's leading bytes.
type FileType int

const (
	Unknown FileType = iota
	NISoundContainer
	KontaktMonolith
	KontaktLegacyV2
	KoreSound
	// NCWAudio is a domain-stack addition: a standalone .ncw sample file
	// encountered outside of an enclosing NISound container, detected by
	// its own header magic (§6.1) rather than the core four-way table.
	NCWAudio
)

func (t FileType) String() string {
	switch t {
	case NISoundContainer:
		return "NISoundContainer"
	case KontaktMonolith:
		return "KontaktMonolith"
	case KontaktLegacyV2:
		return "KontaktLegacyV2"
	case KoreSound:
		return "KoreSound"
	case NCWAudio:
		return "NCWAudio"
	default:
		return "Unknown"
	}
}

var (
	nisoundTag  = [4]byte{'h', 's', 'i', 'n'}
	monolithTag = [4]byte{0x2F, 0x5C, 0x20, 0x4E}
	legacyV2Tag = [4]byte{0x12, 0x90, 0xA8, 0x7F}
	koreTag     = [4]byte{'-', 'n', 'i', '-'}
)

const (
	ncwMagicV1 = 0x01A89ED631010000
	ncwMagicV2 = 0x01A89ED630010000
)

// minHeader is the number of leading bytes Detect needs to make a
// decision: far enough to cover the NISound domain tag at offset
// 12..16, the deepest of the rules below.
const minHeader = 16

// Detect sniffs a file's leading bytes and reports its FileType. The
// first matching rule wins:
//
//  1. bytes[12:16] == "hsin"   -> NISoundContainer
//  2. bytes[0:4]   == 2F5C204E -> KontaktMonolith
//  3. bytes[0:4]   == 1290A87F -> KontaktLegacyV2
//  4. bytes[0:4]   == "-ni-"   -> KoreSound
//  5. bytes[0:8]   == one of the two NCW header magics -> NCWAudio
//  6. otherwise                -> Unknown
//
// The NISound domain tag sits inside ItemHeader at body-relative offset
// 12 (after the 8-byte Length field and the 4-byte Version field), and
// Detect runs against unmodified file bytes with no SizedData wrapper
// stripped first, so the tag sits at file-absolute offset 12.
func Detect(header []byte) FileType {
	if len(header) < minHeader {
		return Unknown
	}

	switch {
	case [4]byte(header[12:16]) == nisoundTag:
		return NISoundContainer
	case [4]byte(header[0:4]) == monolithTag:
		return KontaktMonolith
	case [4]byte(header[0:4]) == legacyV2Tag:
		return KontaktLegacyV2
	case [4]byte(header[0:4]) == koreTag:
		return KoreSound
	}

	magic := uint64(0)
	for _, b := range header[0:8] {
		magic = magic<<8 | uint64(b)
	}
	if magic == ncwMagicV1 || magic == ncwMagicV2 {
		return NCWAudio
	}

	return Unknown
}
