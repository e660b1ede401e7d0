// Package kontakt decodes the legacy BPatch header formats and the
// recursive structured-object tree they frame: programs, groups, zones,
// filename tables, and parameter arrays.
package kontakt

import (
	"fmt"
	"io"

	"github.com/kelindar/ni-file/internal/nierr"
	"github.com/kelindar/ni-file/internal/streamio"
)

// ChunkData is a child record inside a structured object's children
// block: an id, an explicit length, and that many bytes. When id.IsComposite
// reports true, Object holds the result of re-entering the
// structured-object reader on Bytes (§4.5 step 4); it is nil for raw and
// fixed-layout chunk ids (filename tables, parameter arrays, private-raw
// blobs), which the caller reaches through Decode instead.
type ChunkData struct {
	ID     ChunkID
	Bytes  []byte
	Object *StructuredObject
}

// StructuredObject is the recursive chunk described by §3.5: a bool gate
// selecting raw-remainder mode versus versioned public/private/children
// blocks.
type StructuredObject struct {
	IsDataStructured bool
	Version          uint16
	Private          []byte
	Public           []byte
	Children         []ChunkData
}

// ReadStructuredObject parses a structured object from its full byte
// buffer (the `bytes` half of an enclosing {id, length, bytes} record, or
// the root chunk's payload).
func ReadStructuredObject(data []byte) (*StructuredObject, error) {
	r := streamio.NewBytes(data)

	isStructured, err := r.Bool()
	if err != nil {
		return nil, fmt.Errorf("kontakt: structured object gate: %w", err)
	}

	if !isStructured {
		rest, err := io.ReadAll(r.Unwrap())
		if err != nil {
			return nil, fmt.Errorf("kontakt: structured object raw remainder: %w", err)
		}
		return &StructuredObject{IsDataStructured: false, Public: rest}, nil
	}

	so := &StructuredObject{IsDataStructured: true}

	if so.Version, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("kontakt: structured object version: %w", err)
	}

	privateLen, err := r.U32LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: structured object private length: %w", err)
	}
	if so.Private, err = r.Bytes(int(privateLen)); err != nil {
		return nil, fmt.Errorf("kontakt: structured object private data: %w", err)
	}

	publicLen, err := r.U32LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: structured object public length: %w", err)
	}
	if so.Public, err = r.Bytes(int(publicLen)); err != nil {
		return nil, fmt.Errorf("kontakt: structured object public data: %w", err)
	}

	childrenLen, err := r.U32LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: structured object children length: %w", err)
	}
	childrenBytes, err := r.Bytes(int(childrenLen))
	if err != nil {
		return nil, fmt.Errorf("kontakt: structured object children data: %w", err)
	}

	so.Children, err = readChunkDataList(childrenBytes)
	if err != nil {
		return nil, err
	}

	return so, nil
}

// readChunkDataList parses a concatenation of {id u16, length u32, bytes}
// records, stopping when the buffer is exhausted or a read hits
// UnexpectedEOF, whichever comes first. Tracked by hand (rather than
// through streamio) so an oversize length can be reported as
// IncorrectFrameSize with the bytes actually available.
func readChunkDataList(buf []byte) ([]ChunkData, error) {
	var chunks []ChunkData
	pos := 0

	for {
		if len(buf)-pos < 2 {
			return chunks, nil
		}
		id := ChunkID(uint16(buf[pos]) | uint16(buf[pos+1])<<8)
		pos += 2

		if len(buf)-pos < 4 {
			return chunks, nil
		}
		length := uint32(buf[pos]) | uint32(buf[pos+1])<<8 | uint32(buf[pos+2])<<16 | uint32(buf[pos+3])<<24
		pos += 4

		if int(length) > len(buf)-pos {
			return nil, fmt.Errorf("kontakt: chunk %s: %w", id, &nierr.IncorrectFrameSize{
				Expected: uint64(length),
				Got:      uint64(len(buf) - pos),
			})
		}

		body := buf[pos : pos+int(length)]
		pos += int(length)

		chunk := ChunkData{ID: id, Bytes: body}
		if id.IsComposite() {
			obj, err := ReadStructuredObject(body)
			if err != nil {
				return nil, fmt.Errorf("kontakt: chunk %s: %w", id, err)
			}
			chunk.Object = obj
		}

		chunks = append(chunks, chunk)
	}
}

// Find returns the first child chunk with the given id, or nil.
func (so *StructuredObject) Find(id ChunkID) *ChunkData {
	for i := range so.Children {
		if so.Children[i].ID == id {
			return &so.Children[i]
		}
	}
	return nil
}

// ParamSlot is one fixed-width optional slot in a 0x3A/0x3B/0x3C
// parameter array: present or empty.
type ParamSlot struct {
	Present bool
	Chunk   ChunkData
}

// ReadParamArray parses a fixed-length array of `count` optional
// sub-chunks, each slot prefixed by a bool `present` and, if true, a
// nested {id, length, bytes} record.
func ReadParamArray(data []byte, count int) ([]ParamSlot, error) {
	r := streamio.NewBytes(data)
	slots := make([]ParamSlot, count)

	for i := 0; i < count; i++ {
		present, err := r.Bool()
		if err != nil {
			return nil, fmt.Errorf("kontakt: param array slot %d present flag: %w", i, err)
		}
		if !present {
			continue
		}

		id, err := r.U16LE()
		if err != nil {
			return nil, fmt.Errorf("kontakt: param array slot %d id: %w", i, err)
		}
		length, err := r.U32LE()
		if err != nil {
			return nil, fmt.Errorf("kontakt: param array slot %d length: %w", i, err)
		}
		body, err := r.Bytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("kontakt: param array slot %d data: %w", i, err)
		}

		slots[i] = ParamSlot{Present: true, Chunk: ChunkData{ID: ChunkID(id), Bytes: body}}
	}

	return slots, nil
}
