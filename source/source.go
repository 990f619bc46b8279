// Package source implements the Byte Source contract shared by the
// jpeg and png decoders: a pull interface over a byte stream that
// adapts in-memory buffers, stdio-like files, and user-supplied
// callbacks behind one set of operations. Modeled on the cursor and
// offset bookkeeping the teacher decoder (jrm-1535/jpeg) keeps inline
// in jpeg.go, pulled out here so more than one container format can
// share it.
package source

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/go-raster/raster/errs"
)

// Source is the uniform byte-stream contract every decoder reads
// through. All reads fail with errs.ErrUnexpectedEnd on underflow.
type Source interface {
	ReadByte() (byte, error)
	ReadU16BE() (uint16, error)
	ReadU32BE() (uint32, error)
	ReadU16LE() (uint16, error) // used by TGA info probes; part of the shared surface
	ReadFull(buf []byte) error
	Skip(n int) error
	EOF() bool
	Tell() int64
	RewindTo(anchor int64)
}

// --- in-memory slice source -------------------------------------------------

// memSource adapts a []byte already resident in memory.
type memSource struct {
	buf []byte
	pos int
}

// NewMem returns a Source over an in-memory buffer.
func NewMem(buf []byte) Source { return &memSource{buf: buf} }

func (s *memSource) ReadByte() (byte, error) {
	if s.pos >= len(s.buf) {
		return 0, errs.ErrUnexpectedEnd
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

func (s *memSource) ReadU16BE() (uint16, error) {
	if s.pos+2 > len(s.buf) {
		return 0, errs.ErrUnexpectedEnd
	}
	v := binary.BigEndian.Uint16(s.buf[s.pos:])
	s.pos += 2
	return v, nil
}

func (s *memSource) ReadU32BE() (uint32, error) {
	if s.pos+4 > len(s.buf) {
		return 0, errs.ErrUnexpectedEnd
	}
	v := binary.BigEndian.Uint32(s.buf[s.pos:])
	s.pos += 4
	return v, nil
}

func (s *memSource) ReadU16LE() (uint16, error) {
	if s.pos+2 > len(s.buf) {
		return 0, errs.ErrUnexpectedEnd
	}
	v := binary.LittleEndian.Uint16(s.buf[s.pos:])
	s.pos += 2
	return v, nil
}

func (s *memSource) ReadFull(buf []byte) error {
	if s.pos+len(buf) > len(s.buf) {
		return errs.ErrUnexpectedEnd
	}
	copy(buf, s.buf[s.pos:])
	s.pos += len(buf)
	return nil
}

func (s *memSource) Skip(n int) error {
	if n < 0 || s.pos+n > len(s.buf) {
		return errs.ErrUnexpectedEnd
	}
	s.pos += n
	return nil
}

func (s *memSource) EOF() bool        { return s.pos >= len(s.buf) }
func (s *memSource) Tell() int64      { return int64(s.pos) }
func (s *memSource) RewindTo(a int64) { s.pos = int(a) }

// --- file source -------------------------------------------------------------

// fileSource adapts a seekable *os.File, the "stdio-like file" variant
// of spec.md §4.1.
type fileSource struct {
	f   *os.File
	eof bool
}

// NewFile returns a Source over an open, seekable file.
func NewFile(f *os.File) Source { return &fileSource{f: f} }

func (s *fileSource) ReadByte() (byte, error) {
	var b [1]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *fileSource) ReadU16BE() (uint16, error) {
	var b [2]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (s *fileSource) ReadU32BE() (uint32, error) {
	var b [4]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func (s *fileSource) ReadU16LE() (uint16, error) {
	var b [2]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (s *fileSource) ReadFull(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := io.ReadFull(s.f, buf)
	if n > 0 {
		// partial progress still counts against EOF detection below
	}
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.eof = true
		}
		return errs.ErrUnexpectedEnd
	}
	return nil
}

func (s *fileSource) Skip(n int) error {
	if n == 0 {
		return nil
	}
	off, err := s.f.Seek(int64(n), io.SeekCurrent)
	if err != nil {
		s.eof = true
		return errs.ErrUnexpectedEnd
	}
	// Seeking past EOF does not itself error on most platforms; check.
	info, statErr := s.f.Stat()
	if statErr == nil && off > info.Size() {
		s.eof = true
		return errs.ErrUnexpectedEnd
	}
	return nil
}

func (s *fileSource) EOF() bool { return s.eof }

func (s *fileSource) Tell() int64 {
	off, _ := s.f.Seek(0, io.SeekCurrent)
	return off
}

func (s *fileSource) RewindTo(a int64) {
	s.f.Seek(a, io.SeekStart)
	s.eof = false
}

// --- callback source -----------------------------------------------------

// Callbacks is the pull-style contract a caller supplies when neither a
// buffer nor a file is convenient: read(buf, n) -> n, skip(n), eof().
type Callbacks struct {
	Read func(buf []byte) int
	Skip func(n int)
	EOF  func() bool
}

const callbackRefillSize = 128 // minimum internal refill buffer, per spec.md §4.1

// callbackSource adapts Callbacks into the Source contract. Reads past
// end-of-stream never block: they yield 0 and set a sticky flag the
// decoder samples via EOF.
type callbackSource struct {
	cb       Callbacks
	refill   []byte
	rpos     int
	rlen     int
	pos      int64
	userEOF  bool // sticky: callback reported 0 bytes / true once
}

// NewCallbacks returns a Source that pulls bytes through user callbacks.
func NewCallbacks(cb Callbacks) Source {
	return &callbackSource{cb: cb, refill: make([]byte, callbackRefillSize)}
}

func (s *callbackSource) fill() {
	if s.rpos < s.rlen || s.userEOF {
		return
	}
	n := s.cb.Read(s.refill)
	s.rpos, s.rlen = 0, n
	if n == 0 || (s.cb.EOF != nil && s.cb.EOF()) {
		s.userEOF = true
	}
}

func (s *callbackSource) ReadByte() (byte, error) {
	s.fill()
	if s.rpos >= s.rlen {
		return 0, errs.ErrUnexpectedEnd
	}
	b := s.refill[s.rpos]
	s.rpos++
	s.pos++
	return b, nil
}

func (s *callbackSource) ReadU16BE() (uint16, error) {
	hi, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	lo, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (s *callbackSource) ReadU32BE() (uint32, error) {
	hi, err := s.ReadU16BE()
	if err != nil {
		return 0, err
	}
	lo, err := s.ReadU16BE()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (s *callbackSource) ReadU16LE() (uint16, error) {
	lo, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	hi, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (s *callbackSource) ReadFull(buf []byte) error {
	for i := range buf {
		b, err := s.ReadByte()
		if err != nil {
			return err
		}
		buf[i] = b
	}
	return nil
}

func (s *callbackSource) Skip(n int) error {
	if s.cb.Skip != nil {
		// Drain the refill buffer first so position accounting stays correct.
		for n > 0 && s.rpos < s.rlen {
			s.rpos++
			s.pos++
			n--
		}
		if n > 0 {
			s.cb.Skip(n)
			s.pos += int64(n)
			s.rpos, s.rlen = 0, 0
		}
		return nil
	}
	for ; n > 0; n-- {
		if _, err := s.ReadByte(); err != nil {
			return err
		}
	}
	return nil
}

func (s *callbackSource) EOF() bool {
	return s.userEOF && s.rpos >= s.rlen
}

func (s *callbackSource) Tell() int64 { return s.pos }

// RewindTo is unsupported for callback sources past the current refill
// window; rewinding within the live buffer is all the JPEG/PNG decoders
// ever need (a remembered anchor for backtracking a marker probe).
func (s *callbackSource) RewindTo(a int64) {
	delta := s.pos - a
	if delta >= 0 && int(delta) <= s.rpos {
		s.rpos -= int(delta)
		s.pos = a
	}
}
