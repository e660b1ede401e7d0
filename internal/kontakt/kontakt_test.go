package kontakt

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelindar/ni-file/internal/nierr"
	"github.com/kelindar/ni-file/internal/streamio"
)

func TestPatchTypeMapping(t *testing.T) {
	cases := []struct {
		in   uint16
		want string
	}{
		{0, "NKM"}, {1, "NKI"}, {2, "NKB"}, {3, "NKP"}, {4, "NKG"}, {5, "NKZ"}, {99, "Unknown(99)"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NewPatchType(c.in).String())
	}
}

func TestReadHeaderDispatchesByVersion(t *testing.T) {
	// version 10 -> V1
	buf := make([]byte, headerV1Size)
	binary.LittleEndian.PutUint16(buf[0:2], 10)
	h, err := ReadHeader(streamio.NewBytes(buf))
	require.NoError(t, err)
	require.NotNil(t, h.V1)
	assert.Nil(t, h.V2)
	assert.Nil(t, h.V42)
}

func buildV42Body(magic uint32, uA uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(300)) // header_version selector -> V42
	binary.Write(&buf, binary.LittleEndian, magic)
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // patch type NKI
	buf.Write([]byte{0, 0, 0, 1})                       // patch version bytes
	buf.Write([]byte{'I', 'K', 'N', 'K'})                // signature, stored reversed -> "KNKI"
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // created_at
	binary.Write(&buf, binary.LittleEndian, uA)         // u_a
	binary.Write(&buf, binary.LittleEndian, uint16(0))  // zones
	binary.Write(&buf, binary.LittleEndian, uint16(0))  // groups
	binary.Write(&buf, binary.LittleEndian, uint16(0))  // instruments
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // pcm_data_len
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // is_monolith
	buf.Write([]byte{0, 0, 0, 1})                        // min supported version
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // u_c
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // cat_icon_idx
	buf.Write(make([]byte, 8))                           // author
	buf.Write([]byte{0, 0, 0})                           // cat1/2/3
	buf.Write(make([]byte, 85))                          // url
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // u_b
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // flags
	buf.Write(make([]byte, 16))                          // md5
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // svn_revision
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // crc32_fast
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // decompressed_length
	buf.Write(make([]byte, 32))                          // trailing pad

	body := buf.Bytes()
	// pad or trim to the exact declared total size
	if len(body) < headerV42Size {
		body = append(body, make([]byte, headerV42Size-len(body))...)
	}
	return body[:headerV42Size]
}

func TestReadHeaderV42MagicSucceeds(t *testing.T) {
	body := buildV42Body(headerMagicV42, 0)
	h, err := ReadHeader(streamio.NewBytes(body))
	require.NoError(t, err)
	require.NotNil(t, h.V42)
	assert.Equal(t, PatchTypeNKI, h.V42.PatchType)
}

func TestReadHeaderV42BadMagic(t *testing.T) {
	// bytes "EA 37 63 1A" on the wire decode LE to 0x1A6337EA, not the
	// expected 0xEA37631A.
	body := buildV42Body(0x1A6337EA, 0)
	_, err := ReadHeader(streamio.NewBytes(body))
	assert.ErrorIs(t, err, nierr.ErrBadMagic)
}

func TestReadHeaderV42RejectsNonZeroUA(t *testing.T) {
	body := buildV42Body(headerMagicV42, 7)
	_, err := ReadHeader(streamio.NewBytes(body))
	assert.Error(t, err)
}

func TestStructuredObjectRawMode(t *testing.T) {
	data := append([]byte{0}, []byte("raw-remainder")...)
	so, err := ReadStructuredObject(data)
	require.NoError(t, err)

	assert.False(t, so.IsDataStructured)
	assert.Equal(t, []byte("raw-remainder"), so.Public)
}

func TestStructuredObjectZeroLengthBlocksParseEmpty(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(1) // is_data_structured
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // private length 0
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // public length 0
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // children length 0

	so, err := ReadStructuredObject(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, so.IsDataStructured)
	assert.Empty(t, so.Private)
	assert.Empty(t, so.Public)
	assert.Empty(t, so.Children)
}

func TestStructuredObjectWithChildren(t *testing.T) {
	var child bytes.Buffer
	binary.Write(&child, binary.LittleEndian, uint16(ChunkIDPrivateRawA))
	binary.Write(&child, binary.LittleEndian, uint32(3))
	child.Write([]byte("abc"))

	var buf bytes.Buffer
	buf.WriteByte(1)
	binary.Write(&buf, binary.LittleEndian, uint16(0x80))
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	buf.Write([]byte("pr"))
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	buf.Write([]byte("pu"))
	binary.Write(&buf, binary.LittleEndian, uint32(child.Len()))
	buf.Write(child.Bytes())

	so, err := ReadStructuredObject(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("pr"), so.Private)
	assert.Equal(t, []byte("pu"), so.Public)
	require.Len(t, so.Children, 1)
	assert.Equal(t, ChunkIDPrivateRawA, so.Children[0].ID)
	assert.Equal(t, []byte("abc"), so.Children[0].Bytes)
	assert.Nil(t, so.Children[0].Object)

	found := so.Find(ChunkIDPrivateRawA)
	require.NotNil(t, found)
}

// buildRawStructuredObject encodes a non-structured (raw-remainder) object,
// the smallest valid payload a composite chunk id can nest.
func buildRawStructuredObject(payload string) []byte {
	return append([]byte{0}, []byte(payload)...)
}

func TestStructuredObjectRecursesIntoCompositeChildren(t *testing.T) {
	var group bytes.Buffer
	binary.Write(&group, binary.LittleEndian, uint16(ChunkIDZoneList))
	zoneList := buildRawStructuredObject("zones")
	binary.Write(&group, binary.LittleEndian, uint32(len(zoneList)))
	group.Write(zoneList)

	var buf bytes.Buffer
	buf.WriteByte(1)
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(group.Len()))
	buf.Write(group.Bytes())

	so, err := ReadStructuredObject(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, so.Children, 1)

	zone := so.Find(ChunkIDZoneList)
	require.NotNil(t, zone)
	require.NotNil(t, zone.Object)
	assert.False(t, zone.Object.IsDataStructured)
	assert.Equal(t, []byte("zones"), zone.Object.Public)
}

func TestReadParamArrayOptionalSlots(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0) // slot 0: absent
	buf.WriteByte(1) // slot 1: present
	binary.Write(&buf, binary.LittleEndian, uint16(ChunkIDLoopArray))
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	buf.Write([]byte("hi"))

	slots, err := ReadParamArray(buf.Bytes(), 2)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.False(t, slots[0].Present)
	assert.True(t, slots[1].Present)
	assert.Equal(t, ChunkIDLoopArray, slots[1].Chunk.ID)
	assert.Equal(t, []byte("hi"), slots[1].Chunk.Bytes)
}

// buildWideStringSegment encodes a segment-type byte followed by a
// WideString (u32 char count + UTF-16LE bytes).
func buildWideStringSegment(segType int8, s string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(segType))
	binary.Write(&buf, binary.LittleEndian, uint32(len(s)))
	for _, c := range s {
		binary.Write(&buf, binary.LittleEndian, uint16(c))
	}
	return buf.Bytes()
}

func TestReadFilenameTablePreK51(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // unused header field
	binary.Write(&buf, binary.LittleEndian, uint32(1)) // file_count
	binary.Write(&buf, binary.LittleEndian, int32(2))  // 2 segments
	buf.Write(buildWideStringSegment(0, "samples"))
	buf.Write(buildWideStringSegment(0, "kick.wav"))

	table, err := ReadFilenameTablePreK51(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "samples/kick.wav", table[0])
}

func TestChunkDataDecodeDispatchesRegisteredDecoder(t *testing.T) {
	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, uint32(0)) // unused header field
	binary.Write(&body, binary.LittleEndian, uint32(1)) // file_count
	binary.Write(&body, binary.LittleEndian, int32(1))  // 1 segment
	body.Write(buildWideStringSegment(0, "loop.wav"))

	chunk := ChunkData{ID: ChunkIDFilenameListPreK51, Bytes: body.Bytes()}
	v, found, err := chunk.Decode()
	require.NoError(t, err)
	require.True(t, found)
	table, ok := v.(FilenameTable)
	require.True(t, ok)
	assert.Equal(t, "loop.wav", table[0])
}

func TestChunkDataDecodeUnregisteredReportsNotFound(t *testing.T) {
	// Private-raw chunks are opaque by definition (§3.5) and carry no
	// registered decoder, unlike the filename-table and param-array chunk ids.
	chunk := ChunkData{ID: ChunkIDPrivateRawA, Bytes: []byte("raw")}
	_, found, err := chunk.Decode()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadFilenameTableK51(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(2)) // version
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(1)) // file_count
	binary.Write(&buf, binary.LittleEndian, int32(1))  // 1 segment
	buf.Write(buildWideStringSegment(0, "snare.wav"))

	table, err := ReadFilenameTable(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "snare.wav", table[0])
}
