// Package pdfio provides the byte-addressable, seekable read surface every
// other package in this module parses PDF bytes through. It corresponds to
// spec.md's RandomSource.
package pdfio

import (
	"errors"
	"io"
)

// Source is a seekable, byte-addressable view over a PDF file or an
// in-memory buffer. It is owned by one parse in progress: it is not
// required to be safe for concurrent use, but every exported method
// restores the cursor position on error paths exactly as it found it,
// except where explicitly documented otherwise (Seek, obviously, moves it).
type Source struct {
	rs     io.ReadSeeker
	length int64
	base   int64 // offset of this view's position 0 within the underlying rs
}

// New wraps rs as a Source spanning the whole underlying stream.
func New(rs io.ReadSeeker) (*Source, error) {
	length, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return &Source{rs: rs, length: length}, nil
}

// Length returns the total number of addressable bytes.
func (s *Source) Length() int64 { return s.length }

// Position returns the current absolute read position.
func (s *Source) Position() (int64, error) {
	p, err := s.rs.Seek(0, io.SeekCurrent)
	return p, err
}

// Seek moves the cursor to an absolute offset from the start of the view.
func (s *Source) Seek(offset int64) error {
	_, err := s.rs.Seek(s.base+offset, io.SeekStart)
	return err
}

// ReadByte reads one byte at the current position, advancing it. ok is
// false at end of file.
func (s *Source) ReadByte() (b byte, ok bool) {
	var buf [1]byte
	n, err := s.rs.Read(buf[:])
	if n == 0 || err != nil {
		return 0, false
	}
	return buf[0], true
}

// Peek reads the byte at the current position without advancing it. ok is
// false at end of file.
func (s *Source) Peek() (b byte, ok bool) {
	pos, err := s.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	b, ok = s.ReadByte()
	_, _ = s.rs.Seek(pos, io.SeekStart)
	return b, ok
}

// Read fills into with as many bytes as are available starting at the
// current position, advancing the cursor by the number read.
func (s *Source) Read(into []byte) (int, error) {
	n, err := io.ReadFull(s.rs, into)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	return n, err
}

// ReadAt reads exactly size bytes at offset without disturbing the
// caller-visible notion of "current position" semantics of higher layers
// (it performs its own seek, so callers that care about restoration must
// save/restore around it themselves; see ScopedSeek).
func (s *Source) ReadAt(offset int64, size int) ([]byte, error) {
	if err := s.Seek(offset); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	n, err := s.Read(buf)
	return buf[:n], err
}

// View returns a Source addressing the sub-range [offset, offset+length) of
// s as its own [0, length) range. It shares the underlying ReadSeeker.
func (s *Source) View(offset, length int64) *Source {
	return &Source{rs: s.rs, length: length, base: s.base + offset}
}

// ScopedSeek captures the current position and returns a function that
// restores it. Every public method on the higher-level parsers in this
// module that seeks around on behalf of a caller defers the restore
// function immediately after capturing it — see spec §5: "a public method
// that leaves the offset in an unexpected place is a bug".
func (s *Source) ScopedSeek() (restore func()) {
	pos, err := s.Position()
	if err != nil {
		return func() {}
	}
	// pos is absolute in the underlying rs, so restore it there directly
	// rather than through Seek, which would add this view's base again.
	return func() { _, _ = s.rs.Seek(pos, io.SeekStart) }
}

// TailWindow returns the last n bytes of the source (or the whole source,
// if it is shorter than n) along with the absolute offset of the first
// returned byte. It is used to locate startxref/%%EOF without reading the
// whole file.
func (s *Source) TailWindow(n int64) ([]byte, int64, error) {
	defer s.ScopedSeek()()

	if n > s.length {
		n = s.length
	}
	start := s.length - n
	if start < 0 {
		start = 0
	}
	buf, err := s.ReadAt(start, int(s.length-start))
	return buf, start, err
}
