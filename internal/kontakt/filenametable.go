package kontakt

import (
	"fmt"
	"strings"

	"github.com/kelindar/ni-file/internal/streamio"
)

// FilenameTable maps a sparse file index to its canonical path (segments
// joined by "/"), resolved from either a pre-K51 (0x3D) or K51+ (0x4B)
// chunk.
type FilenameTable map[uint32]string

// ReadFilenameTablePreK51 parses the pre-K51 filename list layout: an
// unused u32 followed by file_count (u32) records, each a signed segment
// count (i32) and that many {segment type byte, UTF-16LE string} pairs.
func ReadFilenameTablePreK51(data []byte) (FilenameTable, error) {
	r := streamio.NewBytes(data)
	if _, err := r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: filename table pre-k51 header: %w", err)
	}
	return readFilenameRecords(r)
}

// ReadFilenameTable parses the K51+ filename list layout: a version (u16,
// expected 2) followed by two unused u32 fields, then the same
// file_count + per-file segment records as the pre-K51 shape.
func ReadFilenameTable(data []byte) (FilenameTable, error) {
	r := streamio.NewBytes(data)

	version, err := r.U16LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: filename table version: %w", err)
	}
	if version != 2 {
		return nil, fmt.Errorf("kontakt: filename table: unsupported version %d", version)
	}

	if _, err := r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: filename table reserved 1: %w", err)
	}
	if _, err := r.U32LE(); err != nil {
		return nil, fmt.Errorf("kontakt: filename table reserved 2: %w", err)
	}

	return readFilenameRecords(r)
}

func readFilenameRecords(r *streamio.Reader) (FilenameTable, error) {
	fileCount, err := r.U32LE()
	if err != nil {
		return nil, fmt.Errorf("kontakt: filename table file count: %w", err)
	}

	table := make(FilenameTable, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		segmentCount, err := r.I32LE()
		if err != nil {
			return nil, fmt.Errorf("kontakt: filename table entry %d segment count: %w", i, err)
		}

		var segments []string
		for s := int32(0); s < segmentCount; s++ {
			if _, err := r.I8(); err != nil {
				return nil, fmt.Errorf("kontakt: filename table entry %d segment %d type: %w", i, s, err)
			}
			segment, err := r.WideString()
			if err != nil {
				return nil, fmt.Errorf("kontakt: filename table entry %d segment %d: %w", i, s, err)
			}
			segments = append(segments, segment)
		}

		table[i] = strings.Join(segments, "/")
	}

	return table, nil
}
