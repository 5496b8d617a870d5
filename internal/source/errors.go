package source

import (
	"errors"
	"fmt"
)

var (
	// ErrEndOfInput is returned by Source.Next once the input is exhausted.
	ErrEndOfInput = errors.New("end of input")
	// ErrDecode is the sentinel matched by every *DecodeError.
	ErrDecode = errors.New("decode error")
	// ErrRetreatNewline reports an attempt to move back over a line break.
	ErrRetreatNewline = errors.New("cannot retreat over newline")
	// ErrRetreatStart reports an attempt to move before the start of a line or input.
	ErrRetreatStart = errors.New("cannot retreat before start")
)

// DecodeError describes bytes that could not be turned into a character.
type DecodeError struct {
	Offset uint64 // character offset at which decoding failed
	Bytes  []byte // offending bytes, if known
	Err    error  // underlying I/O error, if any
}

func (e *DecodeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("decode error at offset %d: %v", e.Offset, e.Err)
	case len(e.Bytes) > 0:
		return fmt.Sprintf("decode error at offset %d: invalid UTF-8 % x", e.Offset, e.Bytes)
	default:
		return fmt.Sprintf("decode error at offset %d", e.Offset)
	}
}

// Is makes errors.Is(err, ErrDecode) hold for every DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
