package monolith

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelindar/ni-file/internal/nierr"
)

// buildMonolith assembles a minimal monolith file: an 8-byte signature
// (only the first 4 bytes of which matter to the detector) followed by
// a first-block offset, then a single directory block holding the
// given entries, then the entry payload bytes back to back.
func buildMonolith(entries []Entry, payloads [][]byte) []byte {
	var buf bytes.Buffer

	buf.Write([]byte{0x2F, 0x5C, 0x20, 0x4E}) // "/\ N"
	buf.Write([]byte{0x49, 0x20, 0x46, 0x43}) // "I FC" filler

	const headerSize = 16
	const blockHeaderSize = directoryBlockHeaderSize
	blockOffset := int64(headerSize)
	binary.Write(&buf, binary.LittleEndian, uint64(blockOffset))

	dataStart := blockOffset + blockHeaderSize + int64(len(entries))*directoryEntrySize
	resolved := make([]Entry, len(entries))
	cursor := dataStart
	for i, e := range entries {
		e.Offset = uint32(cursor)
		e.Length = uint32(len(payloads[i]))
		resolved[i] = e
		cursor += int64(len(payloads[i]))
	}

	binary.Write(&buf, binary.LittleEndian, uint32(len(resolved)))
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // next block: terminate
	for _, e := range resolved {
		binary.Write(&buf, binary.LittleEndian, e.PathHash)
		binary.Write(&buf, binary.LittleEndian, e.Offset)
		binary.Write(&buf, binary.LittleEndian, e.Length)
	}
	for _, p := range payloads {
		buf.Write(p)
	}

	return buf.Bytes()
}

func TestReadDirectoryBadMagic(t *testing.T) {
	data := make([]byte, 16)
	_, err := ReadDirectory(context.Background(), bytes.NewReader(data))
	assert.ErrorIs(t, err, nierr.ErrBadMagic)
}

func TestReadDirectoryAndRead(t *testing.T) {
	data := buildMonolith(
		[]Entry{{PathHash: 0xAAAA}, {PathHash: 0xBBBB}},
		[][]byte{[]byte("first-payload"), []byte("second")},
	)

	src := bytes.NewReader(data)
	dir, err := ReadDirectory(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, dir.Entries, 2)
	assert.Equal(t, uint64(0xAAAA), dir.Entries[0].PathHash)

	payload, err := Read(src, dir.Entries[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("first-payload"), payload)

	payload2, err := Read(src, dir.Entries[1])
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), payload2)
}

func TestReadDirectorySkipsPlaceholderEntries(t *testing.T) {
	data := buildMonolith([]Entry{{PathHash: 1}}, [][]byte{{}})
	src := bytes.NewReader(data)
	dir, err := ReadDirectory(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, dir.Entries)
}

func TestWalkVisitsEveryEntry(t *testing.T) {
	data := buildMonolith(
		[]Entry{{PathHash: 1}, {PathHash: 2}},
		[][]byte{[]byte("aaa"), []byte("bb")},
	)
	src := bytes.NewReader(data)
	dir, err := ReadDirectory(context.Background(), src)
	require.NoError(t, err)

	var seen [][]byte
	err = Walk(context.Background(), src, dir, func(e Entry, data []byte) error {
		seen = append(seen, data)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, []byte("aaa"), seen[0])
	assert.Equal(t, []byte("bb"), seen[1])
}

func TestWalkRespectsCancellation(t *testing.T) {
	data := buildMonolith([]Entry{{PathHash: 1}}, [][]byte{[]byte("x")})
	src := bytes.NewReader(data)
	dir, err := ReadDirectory(context.Background(), src)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = Walk(ctx, src, dir, func(Entry, []byte) error {
		t.Fatal("decodeEntry should not run after cancellation")
		return nil
	})
	assert.Error(t, err)
}
