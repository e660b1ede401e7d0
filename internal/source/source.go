// Package source provides a lazily-initialized, mmap-backed byte source
// for file-backed entry points (nifile.OpenFile), mirroring the
// teacher's internal/uofile.File: a single struct that defers opening
// the underlying file until first use and is safe to open concurrently
// from multiple goroutines exactly once.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"codeberg.org/go-mmap/mmap"
)

const (
	stateNew     int32 = 0
	stateReady   int32 = 1
	stateClosed  int32 = 2
	stateOpening int32 = 3
)

// ErrClosed is returned by any access after Close.
var ErrClosed = errors.New("nifile: source is closed")

// File is a lazily mmap'd file, exposing io.ReaderAt/io.ReadSeeker-style
// random access for the detector and decoders to read from without
// every caller having to manage the underlying os.File/mmap.File
// lifecycle themselves.
type File struct {
	path  string
	file  *mmap.File
	size  int64
	state atomic.Int32
}

// Open returns a File that defers the actual mmap until first use.
func Open(path string) *File {
	return &File{path: path}
}

func (f *File) open() error {
	switch f.state.Load() {
	case stateReady:
		return nil
	case stateClosed:
		return ErrClosed
	}

	if f.state.CompareAndSwap(stateNew, stateOpening) {
		info, err := os.Stat(f.path)
		if err != nil {
			f.state.Store(stateNew)
			return fmt.Errorf("nifile: stat %s: %w", f.path, err)
		}
		file, err := mmap.Open(f.path)
		if err != nil {
			f.state.Store(stateNew)
			return fmt.Errorf("nifile: open %s: %w", f.path, err)
		}
		f.file = file
		f.size = info.Size()
		f.state.Store(stateReady)
		return nil
	}

	// Another goroutine is opening the file; yield until it settles, then
	// act on the state it left behind.
	for f.state.Load() == stateOpening {
		runtime.Gosched()
	}
	return f.open()
}

// ReadAt satisfies io.ReaderAt, opening the file on first call.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if err := f.open(); err != nil {
		return 0, err
	}
	return f.file.ReadAt(p, off)
}

// Size returns the file's length in bytes.
func (f *File) Size() (int64, error) {
	if err := f.open(); err != nil {
		return 0, err
	}
	return f.size, nil
}

// Header reads the first n bytes, the minimum needed by nifile.Detect.
func (f *File) Header(ctx context.Context, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("nifile: read header: %w", err)
	}
	return buf, nil
}

// Close releases the mmap, if one was opened.
func (f *File) Close() error {
	if prev := f.state.Swap(stateClosed); prev == stateClosed {
		return nil
	}
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}
