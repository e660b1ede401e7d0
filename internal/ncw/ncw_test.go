package ncw

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packBits packs values as signed integers of width bits, LSB-first, into a
// byte slice, mirroring the NCW block payload layout.
func packBits(values []int32, bits int) []byte {
	var acc uint64
	var accBits int
	var out []byte

	for _, v := range values {
		acc |= (uint64(uint32(v)) & ((1 << uint(bits)) - 1)) << accBits
		accBits += bits
		for accBits >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			accBits -= 8
		}
	}
	if accBits > 0 {
		out = append(out, byte(acc))
	}
	return out
}

func buildHeader(channels, bitsPerSample uint16, sampleRate, numSamples uint32, numBlocks uint32) []byte {
	blocksOffset := uint32(headerSize)
	dataOffset := blocksOffset + numBlocks*4

	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint64(buf[0:8], headerMagicV1)
	binary.LittleEndian.PutUint16(buf[8:10], channels)
	binary.LittleEndian.PutUint16(buf[10:12], bitsPerSample)
	binary.LittleEndian.PutUint32(buf[12:16], sampleRate)
	binary.LittleEndian.PutUint32(buf[16:20], numSamples)
	binary.LittleEndian.PutUint32(buf[20:24], blocksOffset)
	binary.LittleEndian.PutUint32(buf[24:28], dataOffset)
	binary.LittleEndian.PutUint32(buf[28:32], 0) // data size, unused by tests
	return buf
}

func buildBlockHeader(baseValue int32, bits int16, flags uint16) []byte {
	buf := make([]byte, blockHeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], blockMagic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(baseValue))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(bits))
	binary.LittleEndian.PutUint16(buf[10:12], flags)
	return buf
}

func TestOpenRejectsBadMagic(t *testing.T) {
	buf := buildHeader(1, 16, 44100, 512, 1)
	binary.BigEndian.PutUint64(buf[0:8], 0xDEADBEEFDEADBEEF)
	r := bytes.NewReader(append(buf, make([]byte, 4)...))

	_, err := Open(r)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestOpenReadsBlockOffsetTable(t *testing.T) {
	header := buildHeader(1, 16, 44100, 1024, 2)

	var offsets bytes.Buffer
	binary.Write(&offsets, binary.LittleEndian, uint32(0))
	binary.Write(&offsets, binary.LittleEndian, uint32(100))

	full := append(header, offsets.Bytes()...)
	r, err := Open(bytes.NewReader(full))
	require.NoError(t, err)

	assert.Equal(t, 2, r.NumBlocks())
	assert.Equal(t, []uint32{0, 100}, r.BlockOffsets)
	assert.Equal(t, uint16(1), r.Header.Channels)
}

// TestDeltaDecodeScenario matches the spec's concrete scenario: bits=4,
// base_value=1000, packed deltas [1,1,-1,0,...] -> samples
// [1000, 1001, 1002, 1001, 1001, ...].
func TestDeltaDecodeScenario(t *testing.T) {
	deltas := make([]int32, samplesPerBlock)
	deltas[0] = 1
	deltas[1] = 1
	deltas[2] = -1
	deltas[3] = 0

	payload := packBits(deltas, 4)
	// pad to the full bits*64 payload size the block header promises
	full := make([]byte, 4*64)
	copy(full, payload)

	samples := decodeDeltaBlock(1000, full, 4)
	assert.Equal(t, int32(1000), samples[0])
	assert.Equal(t, int32(1001), samples[1])
	assert.Equal(t, int32(1002), samples[2])
	assert.Equal(t, int32(1001), samples[3])
	assert.Equal(t, int32(1001), samples[4])
}

func TestTruncatedDecodeSignExtension(t *testing.T) {
	// 3-bit values: -1 encodes as 0b111
	values := []int32{-1, 3, -4, 0}
	payload := packBits(values, 3)
	full := make([]byte, 3*64)
	copy(full, payload)

	samples := decodeTruncatedBlock(full, 3)
	assert.Equal(t, int32(-1), samples[0])
	assert.Equal(t, int32(3), samples[1])
	assert.Equal(t, int32(-4), samples[2])
	assert.Equal(t, int32(0), samples[3])
}

func TestReadBlockZeroBitsIsRawMode(t *testing.T) {
	header := buildHeader(1, 16, 44100, 512, 1)

	var buf bytes.Buffer
	buf.Write(header)
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // single block at offset 0 from dataOffset

	buf.Write(buildBlockHeader(0, 0, 0))
	raw := make([]byte, samplesPerBlock*2) // 16-bit samples
	binary.LittleEndian.PutUint16(raw[0:2], uint16(int16(42)))
	binary.LittleEndian.PutUint16(raw[2:4], uint16(int16(-7)))
	buf.Write(raw)

	r, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	samples, err := r.ReadBlock(0)
	require.NoError(t, err)
	require.Len(t, samples, samplesPerBlock)
	assert.Equal(t, int32(42), samples[0])
	assert.Equal(t, int32(-7), samples[1])
}

func TestReadBlockMidSideUnimplemented(t *testing.T) {
	header := buildHeader(2, 16, 44100, 512, 1)

	var buf bytes.Buffer
	buf.Write(header)
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.Write(buildBlockHeader(0, 4, 1)) // flags == 1: mid/side
	buf.Write(make([]byte, 4*64))

	r, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	_, err = r.ReadBlock(0)
	assert.ErrorIs(t, err, ErrMidSide)
}

func TestReadBlockIndexOutOfRange(t *testing.T) {
	header := buildHeader(1, 16, 44100, 512, 0)
	r, err := Open(bytes.NewReader(header))
	require.NoError(t, err)

	_, err = r.ReadBlock(0)
	assert.Error(t, err)
}

func TestSamplesDecodesAllBlocks(t *testing.T) {
	header := buildHeader(1, 16, 44100, 1024, 2)

	var buf bytes.Buffer
	buf.Write(header)
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(blockHeaderSize+512*2))

	for _, base := range []int32{10, 20} {
		buf.Write(buildBlockHeader(0, 0, 0))
		raw := make([]byte, samplesPerBlock*2)
		binary.LittleEndian.PutUint16(raw[0:2], uint16(int16(base)))
		buf.Write(raw)
	}

	r, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	samples, err := r.Samples()
	require.NoError(t, err)
	require.Len(t, samples, samplesPerBlock*2)
	assert.Equal(t, int32(10), samples[0])
	assert.Equal(t, int32(20), samples[samplesPerBlock])
}

func TestWriteWAVHeaderFields(t *testing.T) {
	r := &Reader{Header: Header{Channels: 2, BitsPerSample: 16, SampleRate: 44100}}
	out := r.WriteWAV([]int32{1, -1, 2, -2})

	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, "WAVE", string(out[8:12]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(out[22:24]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(out[24:28]))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(out[40:44]))
	require.Len(t, out, 44+8)
}

var _ io.ReadSeeker = (*bytes.Reader)(nil)
