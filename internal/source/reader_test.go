package source

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

func readAll(t *testing.T, src Source) (string, error) {
	t.Helper()
	var sb strings.Builder
	for {
		r, err := src.Next()
		if err != nil {
			return sb.String(), err
		}
		sb.WriteRune(r)
	}
}

func TestReaderDecodesUTF8(t *testing.T) {
	got, err := readAll(t, NewString("a→β\n"))
	if !errors.Is(err, ErrEndOfInput) {
		t.Fatalf("expected ErrEndOfInput, got %v", err)
	}
	if got != "a→β\n" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestReaderEndOfInputIsSticky(t *testing.T) {
	r := NewString("")
	for i := 0; i < 3; i++ {
		if _, err := r.Next(); !errors.Is(err, ErrEndOfInput) {
			t.Fatalf("call %d: expected ErrEndOfInput, got %v", i, err)
		}
	}
}

func TestReaderInvalidUTF8(t *testing.T) {
	r := NewBytes([]byte("ab\xffc"), ReaderOptions{})
	got, err := readAll(t, r)
	if got != "ab" {
		t.Fatalf("expected prefix %q, got %q", "ab", got)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T %v", err, err)
	}
	if de.Offset != 2 {
		t.Fatalf("expected offset 2, got %d", de.Offset)
	}
	if len(de.Bytes) != 1 || de.Bytes[0] != 0xff {
		t.Fatalf("unexpected bytes % x", de.Bytes)
	}
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected errors.Is(err, ErrDecode)")
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestReaderIOErrorIsDecodeError(t *testing.T) {
	_, err := NewReader(brokenReader{}, ReaderOptions{}).Next()
	if !errors.Is(err, ErrDecode) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected decode error wrapping io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestReaderNormalizeAndBOM(t *testing.T) {
	// "e" + combining acute -> "é" после NFC
	in := "\uFEFFe\u0301"
	r := NewReader(strings.NewReader(in), ReaderOptions{Normalize: true, StripBOM: true})
	got, err := readAll(t, r)
	if !errors.Is(err, ErrEndOfInput) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\u00e9" {
		t.Fatalf("expected NFC %q, got %q", "\u00e9", got)
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 character delivered, got %d", r.Count())
	}
}

func TestShareIsIdempotent(t *testing.T) {
	s := Share(NewString("x"))
	if Share(s) != s {
		t.Fatalf("expected Share to return the same *Shared")
	}
}

// TestSharedConcurrentReaders: каждый символ достаётся ровно одному читателю.
func TestSharedConcurrentReaders(t *testing.T) {
	const n = 1000
	s := Share(NewString(strings.Repeat("z", n)))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count := 0
			for {
				if _, err := s.Next(); err != nil {
					break
				}
				count++
			}
			mu.Lock()
			total += count
			mu.Unlock()
		}()
	}
	wg.Wait()
	if total != n {
		t.Fatalf("expected %d characters across readers, got %d", n, total)
	}
}
