package scanner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"statescan/internal/source"
	"statescan/internal/token"
	"statescan/internal/trace"
)

// Engine owns all state of one scan: the cursor over the input, the
// unemitted text, the current transition and the sending half of the token
// channel. It is used once; after Run returns it is spent.
type Engine[T any] struct {
	input   *source.Shared
	pos     source.Pos // текущая позиция курсора
	start   source.Pos // позиция начала неэмитированного текста
	backbuf []rune     // стек возвращённых символов, вершина в конце
	buf     []rune     // прочитано с последнего Emit
	state   StateFn[T]
	opts    Options

	// valid only while Run is executing
	ctx    context.Context
	out    chan<- token.Token[T]
	tracer trace.Tracer
	span   uint64
	debug  bool

	emitted uint64
	steps   uint64
	used    atomic.Bool
}

// New validates the state machine, records its start transition and returns
// an engine reading from src. The source is always accessed through
// source.Share so several engines may pull from one input.
func New[T any](src source.Source, sm StateMachine[T], opts Options) (*Engine[T], error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if sm == nil {
		return nil, ErrNilStateMachine
	}
	start, err := sm.StartState()
	if err != nil {
		return nil, fmt.Errorf("scanner: start state: %w", err)
	}
	if start == nil {
		return nil, ErrNoStartState
	}
	return &Engine[T]{
		input: source.Share(src),
		state: start,
		opts:  opts.withDefaults(),
	}, nil
}

// Run drives the transitions on the calling goroutine, sending tokens to
// out, until a transition returns nil, fails, or ctx is cancelled. Run does
// not close out. A departed consumer (ErrChannelClosed or a cancelled ctx)
// is a normal stop and yields nil; any other failure is returned as *Error.
func (e *Engine[T]) Run(ctx context.Context, out chan<- token.Token[T]) error {
	if !e.used.CompareAndSwap(false, true) {
		return ErrEngineConsumed
	}
	if out == nil {
		return ErrNilOutput
	}
	if ctx == nil {
		ctx = context.Background()
	}
	e.ctx, e.out = ctx, out
	e.tracer = trace.FromContext(ctx)
	e.debug = e.tracer.Enabled() && e.tracer.Level().ShouldEmit(trace.KindPoint, trace.ScopeStep)

	span := trace.Begin(e.tracer, trace.ScopeScan, e.opts.Name, trace.CurrentSpan(ctx))
	e.span = span.ID()

	err := e.loop()

	span.WithExtra("tokens", strconv.FormatUint(e.emitted, 10)).
		WithExtra("steps", strconv.FormatUint(e.steps, 10)).
		WithExtra("offset", strconv.FormatUint(e.pos.Offset, 10))
	if err != nil {
		trace.Error(e.tracer, trace.ScopeScan, e.opts.Name, e.span, err)
		span.End("failed")
		return err
	}
	span.End("ok")
	return nil
}

func (e *Engine[T]) loop() error {
	for e.state != nil {
		if e.ctx.Err() != nil {
			return nil
		}
		next, err := e.state(e)
		e.steps++
		if err != nil {
			if errors.Is(err, ErrChannelClosed) {
				return nil
			}
			return &Error{Pos: e.pos, Pending: string(e.buf), Err: err}
		}
		e.state = next
	}
	return nil
}

// Emitted returns how many tokens the engine has delivered.
func (e *Engine[T]) Emitted() uint64 {
	return e.emitted
}
