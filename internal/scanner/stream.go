package scanner

import (
	"context"
	"iter"
	"sync"

	"golang.org/x/sync/errgroup"

	"statescan/internal/source"
	"statescan/internal/token"
)

// Stream is the consumer side of a spawned engine.
type Stream[T any] struct {
	tokens <-chan token.Token[T]
	cancel context.CancelFunc
	group  *errgroup.Group

	once sync.Once
	err  error
}

// Spawn hands e over to a worker goroutine and returns immediately.
// The engine must not be touched by the caller afterwards.
func Spawn[T any](ctx context.Context, e *Engine[T]) *Stream[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	ch := make(chan token.Token[T], e.opts.Buffer)
	g.Go(func() error {
		defer close(ch)
		return e.Run(gctx, ch)
	})

	return &Stream[T]{tokens: ch, cancel: cancel, group: g}
}

// Tokens returns the receiving end of the delivery channel. It is closed
// once the worker has stopped, normally or not.
func (s *Stream[T]) Tokens() <-chan token.Token[T] {
	return s.tokens
}

// Recv blocks for the next token; ok is false once the stream is drained.
func (s *Stream[T]) Recv() (tok token.Token[T], ok bool) {
	tok, ok = <-s.tokens
	return tok, ok
}

// All iterates over the remaining tokens. Breaking out of the loop closes
// the stream.
func (s *Stream[T]) All() iter.Seq[token.Token[T]] {
	return func(yield func(token.Token[T]) bool) {
		for tok := range s.tokens {
			if !yield(tok) {
				s.cancel()
				return
			}
		}
	}
}

// Wait joins the worker and returns the terminal error of the scan, or nil.
// Drain Tokens (or call Close) first: a worker blocked on a full channel
// only stops once it can deliver or is cancelled.
func (s *Stream[T]) Wait() error {
	s.once.Do(func() {
		s.err = s.group.Wait()
		s.cancel()
	})
	return s.err
}

// Close drops the receiving end: the worker stops at its next read,
// emission or transition boundary. It returns the same result as Wait.
func (s *Stream[T]) Close() error {
	s.cancel()
	return s.Wait()
}

// Collect scans src to completion and returns every emitted token together
// with the terminal error, if any. Tokens emitted before a failure are kept.
func Collect[T any](ctx context.Context, src source.Source, sm StateMachine[T], opts Options) ([]token.Token[T], error) {
	e, err := New(src, sm, opts)
	if err != nil {
		return nil, err
	}
	s := Spawn(ctx, e)
	var toks []token.Token[T]
	for tok := range s.Tokens() {
		toks = append(toks, tok)
	}
	return toks, s.Wait()
}
