package scanner

import (
	"errors"
	"fmt"

	"statescan/internal/source"
)

var (
	// ErrEndOfInput is re-exported for grammar authors.
	ErrEndOfInput = source.ErrEndOfInput
	// ErrBackBufferUnderflow means Back was called with nothing to un-read.
	ErrBackBufferUnderflow = errors.New("scanner: back buffer underflow")
	// ErrChannelClosed means the consumer is gone; the engine stops quietly.
	ErrChannelClosed = errors.New("scanner: token channel closed")
	// ErrTokenTooLong means the pending text reached Options.MaxPending.
	ErrTokenTooLong = errors.New("scanner: token too long")
	// ErrEngineConsumed means Run or Spawn was called twice on one engine.
	ErrEngineConsumed = errors.New("scanner: engine already consumed")
	// ErrNilStateMachine means New got no state machine.
	ErrNilStateMachine = errors.New("scanner: nil state machine")
	// ErrNilSource means New got no input source.
	ErrNilSource = errors.New("scanner: nil source")
	// ErrNoStartState means the state machine produced no start transition.
	ErrNoStartState = errors.New("scanner: no start state")
	// ErrNilOutput means Run got no output channel.
	ErrNilOutput = errors.New("scanner: nil output channel")
)

// Error is the terminal failure of a scan: the cause plus where it happened.
type Error struct {
	Pos     source.Pos // position when the failing transition returned
	Pending string     // text consumed since the last emission
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scan failed at %s: %v", e.Pos, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
