package streamio

import "io"

// SeekReader wraps an io.ReadSeeker with the same primitive-read helpers as
// Reader, plus positioning. The NCW decoder needs random access into its
// block-offset table before decoding sequentially from a chosen position.
type SeekReader struct {
	*Reader
	rs io.ReadSeeker
}

// NewSeek wraps a seekable source.
func NewSeek(rs io.ReadSeeker) *SeekReader {
	return &SeekReader{Reader: New(rs), rs: rs}
}

// SeekTo moves the underlying stream to an absolute offset from the start.
func (s *SeekReader) SeekTo(offset int64) error {
	_, err := s.rs.Seek(offset, io.SeekStart)
	return err
}

// Tell returns the current absolute offset.
func (s *SeekReader) Tell() (int64, error) {
	return s.rs.Seek(0, io.SeekCurrent)
}
