package nifile

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kelindar/ni-file/internal/monolith"
	"github.com/kelindar/ni-file/internal/ncw"
	"github.com/kelindar/ni-file/internal/nisound"
	"github.com/kelindar/ni-file/internal/source"
	"github.com/kelindar/ni-file/internal/streamio"
)

// Decode sniffs data's leading bytes and parses it according to the
// detected FileType. KontaktLegacyV2 and KoreSound are recognized but
// not yet decoded, and are reported via ErrNotImplemented.
func Decode(data []byte) (*Result, error) {
	if len(data) < minHeader {
		return nil, fmt.Errorf("nifile: decode: %w: only %d bytes available", ErrIO, len(data))
	}

	kind := Detect(data[:minHeader])
	return decodeKind(kind, bytes.NewReader(data), int64(len(data)))
}

// OpenFile opens path as a lazily mmap'd source and decodes it the same
// way Decode does, without reading the whole file into memory up
// front.
func OpenFile(path string) (*Result, error) {
	f := source.Open(path)

	header, err := f.Header(context.Background(), minHeader)
	if err != nil {
		return nil, fmt.Errorf("nifile: open %s: %w", path, err)
	}
	size, err := f.Size()
	if err != nil {
		return nil, fmt.Errorf("nifile: open %s: %w", path, err)
	}

	kind := Detect(header)
	return decodeKind(kind, io.NewSectionReader(f, 0, size), size)
}

// readSeekerAt is the minimum a source needs to satisfy to serve every
// decoder: random access for monolith.Source, and Seek for ncw.Open.
type readSeekerAt interface {
	io.ReaderAt
	io.ReadSeeker
}

func decodeKind(kind FileType, rs readSeekerAt, size int64) (*Result, error) {
	switch kind {
	case NISoundContainer:
		buf := make([]byte, size)
		if _, err := rs.ReadAt(buf, 0); err != nil {
			return nil, fmt.Errorf("nifile: read container: %w", err)
		}
		item, err := nisound.ReadRootItem(streamio.NewBytes(buf))
		if err != nil {
			return nil, fmt.Errorf("nifile: decode container: %w", err)
		}
		return &Result{Kind: kind, Container: item}, nil

	case KontaktMonolith:
		dir, err := monolith.ReadDirectory(context.Background(), rs)
		if err != nil {
			return nil, fmt.Errorf("nifile: decode monolith: %w", err)
		}
		return &Result{Kind: kind, Directory: dir}, nil

	case NCWAudio:
		r, err := ncw.Open(rs)
		if err != nil {
			return nil, fmt.Errorf("nifile: decode ncw: %w", err)
		}
		return &Result{Kind: kind, Audio: r}, nil

	case KontaktLegacyV2, KoreSound:
		return nil, fmt.Errorf("nifile: %s: %w", kind, ErrNotImplemented)

	default:
		return nil, fmt.Errorf("nifile: %w", ErrBadMagic)
	}
}

// DecodeMonolithEntry resolves one monolith.Entry's bytes into a Result
// by recursing Decode over its payload, for callers walking a
// Directory returned from a KontaktMonolith Result.
func DecodeMonolithEntry(src monolith.Source, e monolith.Entry) (*Result, error) {
	data, err := monolith.Read(src, e)
	if err != nil {
		return nil, fmt.Errorf("nifile: monolith entry: %w", err)
	}
	return Decode(data)
}
