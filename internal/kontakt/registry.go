package kontakt

import "github.com/kelindar/intmap"

// chunkDecoders holds the registered decode functions, indexed by the
// slot recorded in chunkRegistry.
var chunkDecoders []func([]byte) (any, error)

// chunkRegistry maps a ChunkID to an index into chunkDecoders: the same
// registered-dispatch shape used by nisound's payload registry and
// grounded on the teacher's MUL/UOP entry lookup table. A chunk id with
// no registered decoder is left as raw ChunkData.Bytes for the caller.
var chunkRegistry = intmap.New(16, .95)

// RegisterChunkDecoder associates id with a decode function. Called
// from init for every chunk payload this package knows how to parse
// beyond its raw bytes.
func RegisterChunkDecoder(id ChunkID, decode func([]byte) (any, error)) {
	idx := uint32(len(chunkDecoders))
	chunkDecoders = append(chunkDecoders, decode)
	chunkRegistry.Store(uint32(id), idx)
}

// init registers decoders for the chunk ids whose public data has a
// fixed layout of its own rather than another structured object — the
// composite list/container ids (Program, GroupList, ZoneList, ...) are
// handled instead by ChunkData.Object, populated eagerly while the
// children block is parsed (see readChunkDataList).
func init() {
	RegisterChunkDecoder(ChunkIDFilenameListPreK51, func(b []byte) (any, error) {
		return ReadFilenameTablePreK51(b)
	})
	RegisterChunkDecoder(ChunkIDFilenameTable, func(b []byte) (any, error) {
		return ReadFilenameTable(b)
	})
	RegisterChunkDecoder(ChunkIDParamArray8, func(b []byte) (any, error) {
		return ReadParamArray(b, 8)
	})
	RegisterChunkDecoder(ChunkIDParamArray16, func(b []byte) (any, error) {
		return ReadParamArray(b, 16)
	})
	RegisterChunkDecoder(ChunkIDParamArray32, func(b []byte) (any, error) {
		return ReadParamArray(b, 32)
	})
}

// Decode runs the registered decoder for c.ID against c.Bytes, if one is
// registered. The second return reports whether a decoder was found.
func (c ChunkData) Decode() (any, bool, error) {
	idx, ok := chunkRegistry.Load(uint32(c.ID))
	if !ok {
		return nil, false, nil
	}
	v, err := chunkDecoders[idx](c.Bytes)
	return v, true, err
}
