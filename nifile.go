// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package nifile

import (
	"github.com/kelindar/ni-file/internal/kontakt"
	"github.com/kelindar/ni-file/internal/monolith"
	"github.com/kelindar/ni-file/internal/ncw"
	"github.com/kelindar/ni-file/internal/nisound"
)

// Result is the uniform typed outcome of decoding any recognized file.
// Exactly the fields matching Kind are populated; the rest are zero.
type Result struct {
	Kind FileType

	// Container holds the parsed item tree for Kind == NISoundContainer.
	Container *nisound.Item

	// Directory holds the flattened entry list for Kind == KontaktMonolith.
	// Entries' raw bytes are fetched on demand via monolith.Read and can be
	// handed back into Decode to dispatch recursively.
	Directory *monolith.Directory

	// Audio holds the opened NCW reader for Kind == NCWAudio. Call
	// Audio.Samples() or Audio.WriteWAV to materialize PCM data.
	Audio *ncw.Reader
}

// BNISoundPreset resolves the preset held by a BNISoundPreset payload
// somewhere in a decoded container's tree, decoding its BPatch header and
// structured-object tree. It returns (nil, nil, false, nil) if no
// BNISoundPreset item is found.
func (r *Result) BNISoundPreset() (*kontakt.Header, *kontakt.StructuredObject, bool, error) {
	if r.Container == nil {
		return nil, nil, false, nil
	}

	preset, ok := findPreset(r.Container)
	if !ok {
		return nil, nil, false, nil
	}

	headerBytes, err := preset.Header()
	if err != nil {
		return nil, nil, false, err
	}
	chunk, err := preset.PresetChunk()
	if err != nil {
		return nil, nil, false, err
	}

	header, so, err := kontakt.DecodePreset(headerBytes, chunk)
	if err != nil {
		return nil, nil, true, err
	}
	return header, so, true, nil
}

func findPreset(it *nisound.Item) (nisound.BNISoundPreset, bool) {
	if p, ok := nisound.AsPayload(it).(nisound.BNISoundPreset); ok {
		return p, true
	}
	for _, child := range it.Children {
		if p, ok := findPreset(child); ok {
			return p, true
		}
	}
	return nisound.BNISoundPreset{}, false
}
