// Package monolith walks the block-chained directory format used by
// Kontakt monolith files: a magic header followed by a chain of
// fixed-shape directory blocks, each naming a region of the same file by
// path hash, offset, and length. It mirrors the offset-table-plus-
// block-header shape this repository's corpus also uses for UOP
// containers, generalized from a hash-keyed single-level index to a
// linked chain of directory blocks.
package monolith

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kelindar/ni-file/internal/nierr"
)

// Magic is the 4-byte prefix of the 8-byte monolith signature
// ("/\ NI FC MTD /\" truncated to its first 4 bytes), read big-endian
// off the wire as the detector sees it.
const Magic = 0x2F5C204E

const (
	directoryBlockHeaderSize = 12 // entry_count u32 + next_block_offset u64
	directoryEntrySize       = 16 // path_hash u64 + offset u32 + length u32
)

// Entry is one directory record: the bytes it names are handed back to
// the caller unparsed, since a monolith entry may itself be any
// detectable file type (most commonly a NISound container preset or a
// raw .ncw sample).
type Entry struct {
	PathHash uint64
	Offset   uint32
	Length   uint32
}

// Directory is the full, flattened chain of entries found by walking
// every directory block until a next-block offset of zero terminates
// the chain.
type Directory struct {
	Entries []Entry
}

// Source is the random-access byte source a monolith file is read
// from: an *os.File, an mmap'd file, or a bytes.Reader all satisfy it.
type Source interface {
	io.ReaderAt
}

// ReadDirectory reads the monolith header at the start of src and walks
// its directory block chain, returning every entry found. ctx is
// checked between blocks (not within a single block's entry list) so a
// caller can cancel a walk over a monolith with many directory blocks.
func ReadDirectory(ctx context.Context, src Source) (*Directory, error) {
	header := make([]byte, 16)
	if _, err := src.ReadAt(header, 0); err != nil {
		return nil, fmt.Errorf("monolith: read header: %w", err)
	}

	magic := binary.BigEndian.Uint32(header[0:4])
	if magic != Magic {
		return nil, fmt.Errorf("%w: monolith magic %#08x", nierr.ErrBadMagic, magic)
	}

	firstBlock := int64(binary.LittleEndian.Uint64(header[8:16]))

	dir := &Directory{}
	for next := firstBlock; next != 0; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		block := make([]byte, directoryBlockHeaderSize)
		if _, err := src.ReadAt(block, next); err != nil {
			return nil, fmt.Errorf("monolith: read directory block at %d: %w", next, err)
		}

		entryCount := binary.LittleEndian.Uint32(block[0:4])
		nextBlock := int64(binary.LittleEndian.Uint64(block[4:12]))

		entries := make([]byte, int(entryCount)*directoryEntrySize)
		if len(entries) > 0 {
			if _, err := src.ReadAt(entries, next+directoryBlockHeaderSize); err != nil {
				return nil, fmt.Errorf("monolith: read directory entries at %d: %w", next, err)
			}
		}

		for i := uint32(0); i < entryCount; i++ {
			off := int(i) * directoryEntrySize
			e := Entry{
				PathHash: binary.LittleEndian.Uint64(entries[off : off+8]),
				Offset:   binary.LittleEndian.Uint32(entries[off+8 : off+12]),
				Length:   binary.LittleEndian.Uint32(entries[off+12 : off+16]),
			}
			if e.Length == 0 {
				continue // placeholder slot: names no bytes
			}
			dir.Entries = append(dir.Entries, e)
		}

		next = nextBlock
	}

	return dir, nil
}

// Read returns the raw bytes named by an entry, to be handed to the
// top-level file-type dispatcher. The walker never interprets entry
// contents itself.
func Read(src Source, e Entry) ([]byte, error) {
	buf := make([]byte, e.Length)
	if _, err := src.ReadAt(buf, int64(e.Offset)); err != nil {
		return nil, fmt.Errorf("monolith: read entry at %d: %w", e.Offset, err)
	}
	return buf, nil
}

// Walk decodes each directory entry's bytes with decodeEntry, calling
// it once per entry in order and stopping at the first error. ctx is
// checked between entries so a long walk over many embedded files can
// be cancelled; a single entry's decode is not itself interruptible.
func Walk(ctx context.Context, src Source, dir *Directory, decodeEntry func(Entry, []byte) error) error {
	for _, e := range dir.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := Read(src, e)
		if err != nil {
			return err
		}
		if err := decodeEntry(e, data); err != nil {
			return fmt.Errorf("monolith: entry hash %#016x: %w", e.PathHash, err)
		}
	}
	return nil
}
