package token

import (
	"fmt"
	"unicode/utf8"

	"statescan/internal/source"
)

// Token is a positioned, classified slice of consumed input.
type Token[T any] struct {
	Pos  source.Pos // position of the first character of Text
	Kind T
	Text string
}

// Len returns the length of the token text in characters.
func (t Token[T]) Len() int {
	return utf8.RuneCountInString(t.Text)
}

// Empty reports whether the token carries no text.
func (t Token[T]) Empty() bool {
	return t.Text == ""
}

// End returns the position just after the token text.
func (t Token[T]) End() source.Pos {
	p := t.Pos
	for _, r := range t.Text {
		p.Advance(r)
	}
	return p
}

// String renders the token as `Kind "text"@line:col`.
func (t Token[T]) String() string {
	return fmt.Sprintf("%v %q@%s", t.Kind, t.Text, t.Pos)
}
