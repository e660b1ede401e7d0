// Package nierr holds the sentinel errors shared across every decoder in
// this repository, so a caller can errors.Is against one taxonomy
// regardless of which layer (container, BPatch, NCW, FastLZ) produced the
// failure.
package nierr

import (
	"errors"
	"fmt"
)

var (
	// ErrIO wraps an unexpected-EOF or other failure reading the
	// underlying byte source.
	ErrIO = errors.New("nifile: io error")

	// ErrBadMagic is returned when a fixed magic field does not match any
	// expected value.
	ErrBadMagic = errors.New("nifile: bad magic")

	// ErrUnsupportedVersion is returned when a structural version tag
	// falls outside the known set.
	ErrUnsupportedVersion = errors.New("nifile: unsupported version")

	// ErrDecompression is returned when the FastLZ-style opcode stream is
	// malformed or over-reads.
	ErrDecompression = errors.New("nifile: decompression error")

	// ErrUnknownItemID names an ItemFrame ItemID outside the known set.
	// No decoder in this repository returns it: there is no strict mode,
	// and unrecognized item ids are kept as nisound.Unsupported payloads.
	ErrUnknownItemID = errors.New("nifile: unknown item id")

	// ErrUnknownChunkID names a structured-object chunk id outside the
	// known set. No decoder in this repository returns it: there is no
	// strict mode, and unrecognized chunk ids are kept as raw ChunkData.
	ErrUnknownChunkID = errors.New("nifile: unknown chunk id")

	// ErrItemTerminator names the sentinel that marks the innermost frame
	// of a frame stack. The frame-stack reader recognizes that frame by
	// its ItemID and never returns this error.
	ErrItemTerminator = errors.New("nifile: item terminator")
)

// IncorrectFrameSize reports that a length field disagreed with the size
// of the region it was read from.
type IncorrectFrameSize struct {
	Expected uint64
	Got      uint64
}

func (e *IncorrectFrameSize) Error() string {
	return fmt.Sprintf("nifile: incorrect frame size: expected %d, got %d", e.Expected, e.Got)
}
