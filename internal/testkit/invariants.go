package testkit

import (
	"fmt"
	"strings"

	"statescan/internal/source"
	"statescan/internal/token"
)

// CheckCoverage verifies that the token texts, concatenated in delivery
// order, reproduce exactly the consumed prefix of the input:
// no characters are lost or duplicated.
func CheckCoverage[T any](toks []token.Token[T], consumed string) error {
	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteString(tok.Text)
	}
	if got := sb.String(); got != consumed {
		return fmt.Errorf("token texts %q do not cover input %q", got, consumed)
	}
	return nil
}

// CheckContiguous verifies the positions of a stream produced by a grammar
// that never drops text:
// 1) the first token starts at the origin
// 2) every token starts where the previous one ended
func CheckContiguous[T any](toks []token.Token[T]) error {
	var want source.Pos
	for i, tok := range toks {
		if tok.Pos != want {
			return fmt.Errorf("token %d (%v) starts at %+v, want %+v", i, tok, tok.Pos, want)
		}
		want = tok.End()
	}
	return nil
}

// CheckOrder verifies that the token texts equal want, in order.
func CheckOrder[T any](toks []token.Token[T], want ...string) error {
	if len(toks) != len(want) {
		return fmt.Errorf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i := range toks {
		if toks[i].Text != want[i] {
			return fmt.Errorf("token %d: expected %q, got %q", i, want[i], toks[i].Text)
		}
	}
	return nil
}
