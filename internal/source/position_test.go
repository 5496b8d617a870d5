package source

import (
	"errors"
	"testing"
)

func TestPosAdvance(t *testing.T) {
	var p Pos
	for _, r := range "ab\ncd" {
		p.Advance(r)
	}
	want := Pos{Offset: 5, Line: 1, Col: 2}
	if p != want {
		t.Fatalf("expected %+v, got %+v", want, p)
	}
}

// TestPosRoundTrip: N шагов вперёд и N назад возвращают исходную позицию.
func TestPosRoundTrip(t *testing.T) {
	inputs := []string{"abc", "x\nyz", "\n\nhello world", "αβγ"}
	for _, in := range inputs {
		var p Pos
		// стартуем с начала последней строки: назад через '\n' нельзя
		runes := []rune(in)
		tail := 0
		for i, r := range runes {
			if r == '\n' {
				tail = i + 1
			}
		}
		for _, r := range runes[:tail] {
			p.Advance(r)
		}
		origin := p
		for _, r := range runes[tail:] {
			p.Advance(r)
		}
		for i := len(runes) - 1; i >= tail; i-- {
			if err := p.Retreat(runes[i]); err != nil {
				t.Fatalf("%q: unexpected retreat error: %v", in, err)
			}
		}
		if p != origin {
			t.Fatalf("%q: expected %+v after round trip, got %+v", in, origin, p)
		}
	}
}

func TestPosRetreatNewlineFailsLoudly(t *testing.T) {
	var p Pos
	p.Advance('a')
	p.Advance('\n')
	before := p
	err := p.Retreat('\n')
	if !errors.Is(err, ErrRetreatNewline) {
		t.Fatalf("expected ErrRetreatNewline, got %v", err)
	}
	if p != before {
		t.Fatalf("position changed on failed retreat: %+v -> %+v", before, p)
	}
}

func TestPosRetreatAtStart(t *testing.T) {
	var p Pos
	if err := p.Retreat('x'); !errors.Is(err, ErrRetreatStart) {
		t.Fatalf("expected ErrRetreatStart, got %v", err)
	}
}

func TestPosLineColAndString(t *testing.T) {
	p := Pos{Offset: 7, Line: 2, Col: 4}
	lc, err := p.LineCol()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc != (LineCol{Line: 3, Col: 5}) {
		t.Fatalf("unexpected line/col %+v", lc)
	}
	if got := p.String(); got != "3:5" {
		t.Fatalf("expected 3:5, got %q", got)
	}

	huge := Pos{Line: 1 << 40}
	if _, err := huge.LineCol(); err == nil {
		t.Fatalf("expected overflow error")
	}
}
