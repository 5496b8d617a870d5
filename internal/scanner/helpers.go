package scanner

import (
	"errors"
	"strings"

	"statescan/internal/source"
)

// AtEnd reports whether err means the input is exhausted.
func AtEnd(err error) bool {
	return errors.Is(err, source.ErrEndOfInput)
}

// Accept consumes the next character if it is one of valid.
func Accept[T any](s Scanner[T], valid string) (bool, error) {
	r, err := s.Peek()
	if err != nil {
		if AtEnd(err) {
			return false, nil
		}
		return false, err
	}
	if !strings.ContainsRune(valid, r) {
		return false, nil
	}
	_, err = s.Next()
	return err == nil, err
}

// AcceptRun consumes characters while pred holds and returns how many it
// consumed. The end of input stops the run without an error.
func AcceptRun[T any](s Scanner[T], pred func(rune) bool) (int, error) {
	n := 0
	for {
		r, err := s.Peek()
		if err != nil {
			if AtEnd(err) {
				return n, nil
			}
			return n, err
		}
		if !pred(r) {
			return n, nil
		}
		if _, err := s.Next(); err != nil {
			return n, err
		}
		n++
	}
}
