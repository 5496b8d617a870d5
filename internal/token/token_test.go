package token

import (
	"testing"

	"statescan/internal/source"
)

type kind uint8

const (
	kindWord kind = iota + 1
	kindSpace
)

func (k kind) String() string {
	switch k {
	case kindWord:
		return "Word"
	case kindSpace:
		return "Space"
	default:
		return "?"
	}
}

func TestTokenEnd(t *testing.T) {
	tok := Token[kind]{Pos: source.Pos{Offset: 3, Line: 0, Col: 3}, Kind: kindWord, Text: "ab\ncd"}
	want := source.Pos{Offset: 8, Line: 1, Col: 2}
	if got := tok.End(); got != want {
		t.Fatalf("expected end %+v, got %+v", want, got)
	}
	if tok.Len() != 5 {
		t.Fatalf("expected len 5, got %d", tok.Len())
	}
}

func TestTokenString(t *testing.T) {
	tok := Token[kind]{Kind: kindSpace, Text: "  "}
	if got := tok.String(); got != `Space "  "@1:1` {
		t.Fatalf("unexpected string %q", got)
	}
	if (Token[kind]{}).Empty() != true {
		t.Fatalf("zero token should be empty")
	}
}
