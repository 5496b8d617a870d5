package scanner

import "statescan/internal/source"

// Scanner is the capability handed to every transition.
type Scanner[T any] interface {
	// Next consumes one character. It fails with source.ErrEndOfInput at the
	// end of the input and with a *source.DecodeError on undecodable input.
	Next() (rune, error)
	// Peek returns the next character without consuming it.
	// Both Next and Peek fail with ErrChannelClosed once the consumer is gone.
	Peek() (rune, error)
	// Back un-reads the most recently consumed character.
	Back() error
	// Emit turns the text consumed since the last emission into a token.
	Emit(kind T) error
	// Ignore drops the text consumed since the last emission.
	Ignore()
	// Pos returns the current position.
	Pos() source.Pos
	// Pending returns the text consumed since the last emission.
	Pending() string
}

// StateFn is one transition of a grammar: it returns the next transition,
// nil to stop, or an error to fail the scan.
type StateFn[T any] func(s Scanner[T]) (StateFn[T], error)

// StateMachine supplies the first transition of a grammar.
type StateMachine[T any] interface {
	StartState() (StateFn[T], error)
}

// Start adapts a bare StateFn to StateMachine.
type Start[T any] StateFn[T]

// StartState implements StateMachine.
func (f Start[T]) StartState() (StateFn[T], error) {
	if f == nil {
		return nil, ErrNoStartState
	}
	return StateFn[T](f), nil
}
