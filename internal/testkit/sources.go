package testkit

import (
	"sync/atomic"
	"time"

	"statescan/internal/source"
)

// FailingSource delivers the characters of its text, then fails with a
// *source.DecodeError once After characters have been read.
type FailingSource struct {
	text  []rune
	after int
	read  int
}

// FailAfter returns a source that yields at most n characters of text and
// then reports a decode failure.
func FailAfter(text string, n int) *FailingSource {
	return &FailingSource{text: []rune(text), after: n}
}

// Next implements source.Source.
func (s *FailingSource) Next() (rune, error) {
	if s.read >= s.after {
		return 0, &source.DecodeError{Offset: uint64(s.read), Bytes: []byte{0xff}}
	}
	if s.read >= len(s.text) {
		return 0, source.ErrEndOfInput
	}
	r := s.text[s.read]
	s.read++
	return r, nil
}

// EndlessSource yields the same character forever and counts reads.
type EndlessSource struct {
	R     rune
	Delay time.Duration
	reads atomic.Int64
}

// Next implements source.Source.
func (s *EndlessSource) Next() (rune, error) {
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	s.reads.Add(1)
	return s.R, nil
}

// Reads returns how many characters were pulled so far.
func (s *EndlessSource) Reads() int64 {
	return s.reads.Load()
}
