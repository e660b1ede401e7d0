// Package nisound decodes the NISound container format: a recursive,
// length-prefixed, UUID-tagged tree of Items, each wrapped in a chain of
// typed ItemFrames.
package nisound

import (
	"fmt"

	"github.com/kelindar/ni-file/internal/streamio"
)

// Item is the recursive building block of an NISound repository: a
// header, the wrapper frame stack describing its typed payload, and any
// sibling children.
type Item struct {
	Header   ItemHeader
	Frames   *ItemFrame
	Children []*Item
}

// ReadItem parses one framed child Item (and, recursively, all of its
// children) from r: an 8-byte sized-data length prefix followed by the
// item's body. Every item nested in a parent's child list is framed this
// way, so a reader can skip a child it doesn't need without parsing it.
func ReadItem(r *streamio.Reader) (*Item, error) {
	body, err := r.SizedData()
	if err != nil {
		return nil, fmt.Errorf("nisound: item body: %w", err)
	}

	return readItemBody(streamio.NewBytes(body))
}

// ReadRootItem parses a standalone container file's root Item directly
// from r, with no outer sized-data wrapper: a file on disk begins
// straight at ItemHeader, unlike the children nested beneath it.
func ReadRootItem(r *streamio.Reader) (*Item, error) {
	return readItemBody(r)
}

func readItemBody(br *streamio.Reader) (*Item, error) {
	headerBytes, err := br.Bytes(itemHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("nisound: item header bytes: %w", err)
	}
	header, err := parseItemHeader(streamio.NewBytes(headerBytes))
	if err != nil {
		return nil, err
	}

	frameStackBlob, err := br.SizedData()
	if err != nil {
		return nil, fmt.Errorf("nisound: item frame stack: %w", err)
	}
	frames, err := parseItemFrameStack(frameStackBlob)
	if err != nil {
		return nil, fmt.Errorf("nisound: item frame stack: %w", err)
	}

	version, err := br.U32LE()
	if err != nil {
		return nil, fmt.Errorf("nisound: item children version: %w", err)
	}
	if version != 1 {
		return nil, fmt.Errorf("nisound: item children version %d != 1", version)
	}

	childCount, err := br.U32LE()
	if err != nil {
		return nil, fmt.Errorf("nisound: item child count: %w", err)
	}

	children := make([]*Item, 0, childCount)
	for i := uint32(0); i < childCount; i++ {
		child, err := ReadItem(br)
		if err != nil {
			return nil, fmt.Errorf("nisound: item child %d: %w", i, err)
		}
		children = append(children, child)
	}

	return &Item{Header: header, Frames: frames, Children: children}, nil
}

// FindChild returns the first direct child whose outermost frame ItemID
// matches id, or nil.
func (it *Item) FindChild(id ItemID) *Item {
	for _, c := range it.Children {
		if c.Frames != nil && c.Frames.Header.ItemID == id {
			return c
		}
	}
	return nil
}

// PayloadID returns the ItemID of the item's outermost wrapper frame, or
// the terminator ID if the item carries no frame stack.
func (it *Item) PayloadID() ItemID {
	if it.Frames == nil {
		return ItemIDTerminator
	}
	return it.Frames.Header.ItemID
}
