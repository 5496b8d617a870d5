package source

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const byteOrderMark = '\uFEFF'

// ReaderOptions tunes how a Reader decodes its input.
type ReaderOptions struct {
	// Normalize applies Unicode NFC normalization before decoding.
	Normalize bool
	// StripBOM drops a leading U+FEFF.
	StripBOM bool
}

// Reader decodes UTF-8 from an io.Reader into characters.
// Invalid encodings are reported as *DecodeError rather than replaced.
type Reader struct {
	br    *bufio.Reader
	opts  ReaderOptions
	read  uint64
	err   error // sticky
	begun bool
}

// NewReader wraps r. The reader is not safe for concurrent use; wrap it
// with Share when several scanners pull from it.
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	if opts.Normalize {
		r = norm.NFC.Reader(r)
	}
	return &Reader{br: bufio.NewReader(r), opts: opts}
}

// NewString returns a Reader over s with default options.
func NewString(s string) *Reader {
	return NewReader(strings.NewReader(s), ReaderOptions{})
}

// NewBytes returns a Reader over b.
func NewBytes(b []byte, opts ReaderOptions) *Reader {
	return NewReader(bytes.NewReader(b), opts)
}

// Next implements Source.
func (r *Reader) Next() (rune, error) {
	if r.err != nil {
		return 0, r.err
	}
	ch, err := r.decode()
	if err != nil {
		r.err = err
		return 0, err
	}
	if !r.begun {
		r.begun = true
		if r.opts.StripBOM && ch == byteOrderMark {
			return r.Next()
		}
	}
	r.read++
	return ch, nil
}

// Count returns how many characters have been delivered so far.
func (r *Reader) Count() uint64 {
	return r.read
}

func (r *Reader) decode() (rune, error) {
	ch, size, err := r.br.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrEndOfInput
		}
		return 0, &DecodeError{Offset: r.read, Err: err}
	}
	if ch == utf8.RuneError && size == 1 {
		// ReadRune съедает ровно один байт на невалидной последовательности
		var bad []byte
		if uerr := r.br.UnreadRune(); uerr == nil {
			if b, berr := r.br.ReadByte(); berr == nil {
				bad = []byte{b}
			}
		}
		return 0, &DecodeError{Offset: r.read, Bytes: bad}
	}
	return ch, nil
}
