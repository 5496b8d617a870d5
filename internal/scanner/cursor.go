package scanner

import (
	"fmt"

	"statescan/internal/source"
	"statescan/internal/token"
	"statescan/internal/trace"
)

// Next implements Scanner. Characters un-read by Back (or staged by Peek)
// are replayed before the source is consulted again.
func (e *Engine[T]) Next() (rune, error) {
	if e.cancelled() {
		return 0, ErrChannelClosed
	}
	var r rune
	if n := len(e.backbuf); n > 0 {
		r = e.backbuf[n-1]
		e.backbuf = e.backbuf[:n-1]
	} else {
		c, err := e.input.Next()
		if err != nil {
			return 0, err
		}
		r = c
	}
	if e.opts.MaxPending > 0 && len(e.buf) >= e.opts.MaxPending {
		// символ не теряется: он будет прочитан снова
		e.backbuf = append(e.backbuf, r)
		return 0, ErrTokenTooLong
	}
	e.buf = append(e.buf, r)
	e.pos.Advance(r)
	return r, nil
}

// Peek implements Scanner. The character is staged on the back buffer, so
// the position and the pending text do not change.
func (e *Engine[T]) Peek() (rune, error) {
	if e.cancelled() {
		return 0, ErrChannelClosed
	}
	if n := len(e.backbuf); n > 0 {
		return e.backbuf[n-1], nil
	}
	r, err := e.input.Next()
	if err != nil {
		return 0, err
	}
	e.backbuf = append(e.backbuf, r)
	return r, nil
}

// Back implements Scanner. It never crosses the last emission and never
// crosses a line break; both attempts fail without changing any state.
func (e *Engine[T]) Back() error {
	n := len(e.buf)
	if n == 0 {
		return ErrBackBufferUnderflow
	}
	r := e.buf[n-1]
	if err := e.pos.Retreat(r); err != nil {
		return fmt.Errorf("scanner: back over %q: %w", r, err)
	}
	e.buf = e.buf[:n-1]
	e.backbuf = append(e.backbuf, r)
	return nil
}

// Emit implements Scanner. The token is positioned at the first character of
// its text. Emit fails with ErrChannelClosed once the consumer is gone.
func (e *Engine[T]) Emit(kind T) error {
	if e.out == nil {
		return ErrNilOutput
	}
	if e.cancelled() {
		return ErrChannelClosed
	}
	tok := token.Token[T]{Pos: e.start, Kind: kind, Text: string(e.buf)}
	select {
	case e.out <- tok:
	case <-e.ctx.Done():
		return ErrChannelClosed
	}
	e.emitted++
	if e.debug {
		trace.Point(e.tracer, trace.ScopeStep, "emit", e.span, tok.String())
	}
	e.reset()
	return nil
}

// cancelled reports whether the consumer is gone. Reads check it too, so a
// run that never emits still stops once the stream is closed.
func (e *Engine[T]) cancelled() bool {
	return e.ctx != nil && e.ctx.Err() != nil
}

// Ignore implements Scanner.
func (e *Engine[T]) Ignore() {
	e.reset()
}

func (e *Engine[T]) reset() {
	e.buf = e.buf[:0]
	e.start = e.pos
}

// Pos implements Scanner.
func (e *Engine[T]) Pos() source.Pos {
	return e.pos
}

// Pending implements Scanner.
func (e *Engine[T]) Pending() string {
	return string(e.buf)
}
