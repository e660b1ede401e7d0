// Package ncw decodes the NCW lossless audio codec used for NI sample
// payloads: a 120-byte header, a block-offset table, and a sequence of
// fixed-size blocks each holding 512 delta-, truncated-, or raw-encoded
// samples per channel.
package ncw

import (
	"errors"
	"fmt"
	"io"

	"github.com/kelindar/ni-file/internal/nierr"
	"github.com/kelindar/ni-file/internal/streamio"
)

const (
	headerSize      = 120
	blockHeaderSize = 16
	samplesPerBlock = 512
)

// headerMagicV1 and headerMagicV2 are the two fixed 64-bit big-endian
// constants an NCW file may open with.
const (
	headerMagicV1 = 0x01A89ED631010000
	headerMagicV2 = 0x01A89ED630010000
)

// blockMagic is the fixed big-endian marker at the start of every block
// header.
const blockMagic = 0x160C9A3E

// ErrBadMagic wraps the shared nierr.ErrBadMagic sentinel.
var ErrBadMagic = nierr.ErrBadMagic

// Errors specific to NCW decoding.
var (
	ErrMidSide   = errors.New("ncw: mid/side stereo (flags == 1) is unimplemented")
	ErrBadHeader = errors.New("ncw: malformed header")
)

// Header is the fixed 120-byte NCW file header.
type Header struct {
	Channels      uint16
	BitsPerSample uint16
	SampleRate    uint32
	NumSamples    uint32
	BlocksOffset  uint32
	DataOffset    uint32
	DataSize      uint32
}

// BlockHeader precedes each block's packed sample payload.
type BlockHeader struct {
	BaseValue int32
	Bits      int16
	Flags     uint16
}

// Reader decodes an NCW stream block by block. Construction reads the
// header and the full block-offset table up front; ReadBlock then seeks to
// each block's payload on demand.
type Reader struct {
	sr           *streamio.SeekReader
	Header       Header
	BlockOffsets []uint32
}

// Open reads the header and block-offset table from a seekable NCW source.
func Open(rs io.ReadSeeker) (*Reader, error) {
	sr := streamio.NewSeek(rs)

	raw, err := sr.Bytes(headerSize)
	if err != nil {
		return nil, fmt.Errorf("ncw: read header: %w", err)
	}
	hr := streamio.NewBytes(raw)

	magic, err := hr.U64BE()
	if err != nil {
		return nil, fmt.Errorf("ncw: header magic: %w", err)
	}
	if magic != headerMagicV1 && magic != headerMagicV2 {
		return nil, fmt.Errorf("%w: header magic %#016x", ErrBadMagic, magic)
	}

	var h Header
	if h.Channels, err = hr.U16LE(); err != nil {
		return nil, fmt.Errorf("%w: channels: %v", ErrBadHeader, err)
	}
	if h.BitsPerSample, err = hr.U16LE(); err != nil {
		return nil, fmt.Errorf("%w: bits per sample: %v", ErrBadHeader, err)
	}
	if h.SampleRate, err = hr.U32LE(); err != nil {
		return nil, fmt.Errorf("%w: sample rate: %v", ErrBadHeader, err)
	}
	if h.NumSamples, err = hr.U32LE(); err != nil {
		return nil, fmt.Errorf("%w: num samples: %v", ErrBadHeader, err)
	}
	if h.BlocksOffset, err = hr.U32LE(); err != nil {
		return nil, fmt.Errorf("%w: blocks offset: %v", ErrBadHeader, err)
	}
	if h.DataOffset, err = hr.U32LE(); err != nil {
		return nil, fmt.Errorf("%w: data offset: %v", ErrBadHeader, err)
	}
	if h.DataSize, err = hr.U32LE(); err != nil {
		return nil, fmt.Errorf("%w: data size: %v", ErrBadHeader, err)
	}

	if err := sr.SeekTo(int64(h.BlocksOffset)); err != nil {
		return nil, fmt.Errorf("ncw: seek to block offset table: %w", err)
	}

	numBlocks := (h.DataOffset - h.BlocksOffset) / 4
	offsets := make([]uint32, 0, numBlocks)
	for i := uint32(0); i < numBlocks; i++ {
		off, err := sr.U32LE()
		if err != nil {
			return nil, fmt.Errorf("ncw: block offset table entry %d: %w", i, err)
		}
		offsets = append(offsets, off)
	}

	return &Reader{sr: sr, Header: h, BlockOffsets: offsets}, nil
}

// NumBlocks reports the size of the block-offset table, matching
// (DataOffset-BlocksOffset)/4.
func (r *Reader) NumBlocks() int {
	return len(r.BlockOffsets)
}

// Samples decodes every block in block-offset order and returns their
// values concatenated, 512 per block. Channels are not re-interleaved:
// block-header flags other than mid/side are not acted on, so in a
// multi-channel file each block's values stay together rather than
// being spread into per-sample frames.
func (r *Reader) Samples() ([]int32, error) {
	out := make([]int32, 0, int(r.Header.NumSamples)*int(r.Header.Channels))
	for i := range r.BlockOffsets {
		block, err := r.ReadBlock(i)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

// ReadBlock decodes the i-th block into 512 signed sample values.
func (r *Reader) ReadBlock(i int) ([]int32, error) {
	if i < 0 || i >= len(r.BlockOffsets) {
		return nil, fmt.Errorf("ncw: block index %d out of range [0,%d)", i, len(r.BlockOffsets))
	}

	abs := int64(r.Header.DataOffset) + int64(r.BlockOffsets[i])
	if err := r.sr.SeekTo(abs); err != nil {
		return nil, fmt.Errorf("ncw: seek to block %d: %w", i, err)
	}

	raw, err := r.sr.Bytes(blockHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("ncw: read block %d header: %w", i, err)
	}
	bhr := streamio.NewBytes(raw)

	magic, err := bhr.U32BE()
	if err != nil {
		return nil, fmt.Errorf("ncw: block %d magic: %w", i, err)
	}
	if magic != blockMagic {
		return nil, fmt.Errorf("%w: block %d magic %#08x", ErrBadMagic, i, magic)
	}

	var bh BlockHeader
	baseValue, err := bhr.I32LE()
	if err != nil {
		return nil, fmt.Errorf("ncw: block %d base value: %w", i, err)
	}
	bh.BaseValue = baseValue

	bits, err := bhr.I16LE()
	if err != nil {
		return nil, fmt.Errorf("ncw: block %d bits: %w", i, err)
	}
	bh.Bits = bits

	flags, err := bhr.U16LE()
	if err != nil {
		return nil, fmt.Errorf("ncw: block %d flags: %w", i, err)
	}
	bh.Flags = flags

	if bh.Flags == 1 {
		return nil, fmt.Errorf("ncw: block %d: %w", i, ErrMidSide)
	}

	switch {
	case bh.Bits > 0:
		payload, err := r.sr.Bytes(int(bh.Bits) * 64)
		if err != nil {
			return nil, fmt.Errorf("ncw: block %d delta payload: %w", i, err)
		}
		return decodeDeltaBlock(bh.BaseValue, payload, int(bh.Bits)), nil

	case bh.Bits < 0:
		bits := int(-bh.Bits)
		payload, err := r.sr.Bytes(bits * 64)
		if err != nil {
			return nil, fmt.Errorf("ncw: block %d truncated payload: %w", i, err)
		}
		return decodeTruncatedBlock(payload, bits), nil

	default:
		return r.decodeRawBlock(i)
	}
}

// decodeRawBlock reads samplesPerBlock samples at BitsPerSample/8 bytes each,
// little-endian signed.
func (r *Reader) decodeRawBlock(blockIndex int) ([]int32, error) {
	bytesPerSample := int(r.Header.BitsPerSample) / 8
	samples := make([]int32, samplesPerBlock)
	for i := range samples {
		raw, err := r.sr.Bytes(bytesPerSample)
		if err != nil {
			return nil, fmt.Errorf("ncw: block %d raw sample %d: %w", blockIndex, i, err)
		}
		samples[i] = decodeRawSample(raw)
	}
	return samples, nil
}

func decodeRawSample(raw []byte) int32 {
	var v int32
	for i, b := range raw {
		v |= int32(b) << (8 * i)
	}
	// Sign extend from len(raw)*8 bits.
	bits := len(raw) * 8
	if bits < 32 && v&(1<<(bits-1)) != 0 {
		v |= int32(^uint32(0)) << bits
	}
	return v
}

// decodeDeltaBlock sign-extends each packed delta and accumulates a prefix
// sum starting at baseValue.
func decodeDeltaBlock(baseValue int32, payload []byte, bits int) []int32 {
	samples := make([]int32, samplesPerBlock)
	deltas := readPackedValues(payload, bits)

	prev := baseValue
	for i, delta := range deltas {
		if i >= samplesPerBlock {
			break
		}
		samples[i] = prev
		prev += delta
	}
	return samples
}

// decodeTruncatedBlock sign-extends each packed value directly, with no
// accumulation.
func decodeTruncatedBlock(payload []byte, bits int) []int32 {
	values := readPackedValues(payload, bits)
	if len(values) > samplesPerBlock {
		values = values[:samplesPerBlock]
	}
	return values
}

// readPackedValues unpacks a bitstream of fixed-width signed integers,
// manually sign-extending each value since arbitrary bit widths rarely
// match a native integer width.
func readPackedValues(data []byte, precisionBits int) []int32 {
	values := make([]int32, 0, len(data)*8/max(precisionBits, 1))

	var acc int32
	var accBits int

	for _, b := range data {
		acc |= int32(b) << accBits
		accBits += 8

		for accBits >= precisionBits {
			value := acc & ((1 << precisionBits) - 1)
			if value&(1<<(precisionBits-1)) != 0 {
				value |= ^int32(0) << precisionBits
			}
			values = append(values, value)

			acc >>= precisionBits
			accBits -= precisionBits
		}
	}

	return values
}
