package nisound

import (
	"fmt"
	"io"

	"github.com/kelindar/ni-file/internal/streamio"
)

// ItemFrameHeader carries the wrapper metadata preceding an ItemFrame's
// typed payload: an ItemID and a structural version.
type ItemFrameHeader struct {
	ItemID  ItemID
	Version uint32
}

func parseItemFrameHeader(r *streamio.Reader) (ItemFrameHeader, error) {
	var h ItemFrameHeader

	id, err := r.U32LE()
	if err != nil {
		return h, fmt.Errorf("nisound: item frame id: %w", err)
	}
	h.ItemID = ItemID(id)

	if h.Version, err = r.U32LE(); err != nil {
		return h, fmt.Errorf("nisound: item frame version: %w", err)
	}

	return h, nil
}

// ItemFrame is one link in a frame stack: a header, an optional inner
// frame (the chain continues until the terminator ItemID is reached), and
// the typed payload bytes that follow the inner frame (or, at the
// terminator, the entire remainder).
type ItemFrame struct {
	Header ItemFrameHeader
	Inner  *ItemFrame
	Data   []byte
}

// parseItemFrame parses a single sized-data ItemFrame body: header, then
// either a terminator payload or a nested sized-data inner frame followed
// by this frame's own payload.
func parseItemFrame(body []byte) (*ItemFrame, error) {
	r := streamio.NewBytes(body)

	header, err := parseItemFrameHeader(r)
	if err != nil {
		return nil, err
	}

	if header.ItemID == ItemIDTerminator {
		data, err := io.ReadAll(r.Unwrap())
		if err != nil {
			return nil, fmt.Errorf("nisound: item frame terminator payload: %w", err)
		}
		return &ItemFrame{Header: header, Data: data}, nil
	}

	innerBody, err := r.SizedData()
	if err != nil {
		return nil, fmt.Errorf("nisound: item frame inner: %w", err)
	}
	inner, err := parseItemFrame(innerBody)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r.Unwrap())
	if err != nil {
		return nil, fmt.Errorf("nisound: item frame payload: %w", err)
	}

	return &ItemFrame{Header: header, Inner: inner, Data: data}, nil
}

// parseItemFrameStack parses the outer sized-data frame-stack blob into
// its outermost ItemFrame (recursively containing every inner frame down
// to the terminator).
func parseItemFrameStack(blob []byte) (*ItemFrame, error) {
	r := streamio.NewBytes(blob)
	frameBody, err := r.SizedData()
	if err != nil {
		return nil, fmt.Errorf("nisound: frame stack: %w", err)
	}
	return parseItemFrame(frameBody)
}

// Innermost walks the Inner chain to the terminator frame.
func (f *ItemFrame) Innermost() *ItemFrame {
	for f.Inner != nil {
		f = f.Inner
	}
	return f
}

// Find walks the Inner chain looking for a frame whose ItemID matches id.
func (f *ItemFrame) Find(id ItemID) *ItemFrame {
	for cur := f; cur != nil; cur = cur.Inner {
		if cur.Header.ItemID == id {
			return cur
		}
	}
	return nil
}
