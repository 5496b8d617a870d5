package grammar

import (
	"context"
	"errors"
	"testing"
	"time"

	"statescan/internal/scanner"
	"statescan/internal/source"
	"statescan/internal/testkit"
	"statescan/internal/token"
)

func scan(t *testing.T, sm scanner.StateMachine[Kind], input string) ([]token.Token[Kind], error) {
	t.Helper()
	return scanner.Collect(context.Background(), source.NewString(input), sm, scanner.Options{})
}

func TestArithIntegersAndOperators(t *testing.T) {
	toks, err := scan(t, Arith{}, "12+3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := testkit.CheckOrder(toks, "12", "+", "3"); err != nil {
		t.Fatal(err)
	}
	wantKinds := []Kind{Integer, Operator, Integer}
	wantCols := []uint64{0, 2, 3}
	for i, tok := range toks {
		if tok.Kind != wantKinds[i] {
			t.Fatalf("token %d: expected %v, got %v", i, wantKinds[i], tok.Kind)
		}
		if tok.Pos.Offset != wantCols[i] || tok.Pos.Col != wantCols[i] || tok.Pos.Line != 0 {
			t.Fatalf("token %d: unexpected position %+v", i, tok.Pos)
		}
	}
}

func TestArithCoversMultilineInput(t *testing.T) {
	input := "let x = 40 + 2\n  y_1 = (x*3) / 7\n"
	toks, err := scan(t, Arith{}, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := testkit.CheckCoverage(toks, input); err != nil {
		t.Fatal(err)
	}
	if err := testkit.CheckContiguous(toks); err != nil {
		t.Fatal(err)
	}
	var idents int
	for _, tok := range toks {
		if tok.Kind == Ident {
			idents++
		}
	}
	if idents != 4 {
		t.Fatalf("expected 4 identifiers, got %d: %v", idents, toks)
	}
}

func TestArithUnexpectedChar(t *testing.T) {
	toks, err := scan(t, Arith{}, "1 @ 2")
	if !errors.Is(err, ErrUnexpectedChar) {
		t.Fatalf("expected ErrUnexpectedChar, got %v", err)
	}
	var serr *scanner.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *scanner.Error, got %T", err)
	}
	if serr.Pos.Offset != 2 {
		t.Fatalf("expected failure at offset 2, got %+v", serr.Pos)
	}
	if err := testkit.CheckOrder(toks, "1", " "); err != nil {
		t.Fatal(err)
	}
}

func TestArithEmptyInput(t *testing.T) {
	toks, err := scan(t, Arith{}, "")
	if err != nil || len(toks) != 0 {
		t.Fatalf("expected no tokens and no error, got %v, %v", toks, err)
	}
}

func TestWordsLeadingSpace(t *testing.T) {
	toks, err := scan(t, Words{}, "  a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := testkit.CheckOrder(toks, "  ", "a"); err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != Space || toks[1].Kind != Word {
		t.Fatalf("unexpected kinds: %v", toks)
	}
	if toks[1].Pos.Col != 2 {
		t.Fatalf("expected word at column 2, got %+v", toks[1].Pos)
	}
}

func TestWordsDropSpace(t *testing.T) {
	toks, err := scan(t, Words{DropSpace: true}, "one  two\nthree ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := testkit.CheckOrder(toks, "one", "two", "three"); err != nil {
		t.Fatal(err)
	}
	if p := toks[2].Pos; p.Line != 1 || p.Col != 0 || p.Offset != 9 {
		t.Fatalf("unexpected position of third word: %+v", p)
	}
}

func TestWordsUnicode(t *testing.T) {
	input := "привет мир"
	toks, err := scan(t, Words{}, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := testkit.CheckCoverage(toks, input); err != nil {
		t.Fatal(err)
	}
	if toks[2].Pos.Col != 7 {
		t.Fatalf("columns must count characters, got %+v", toks[2].Pos)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		if _, err := Lookup(name); err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := Lookup("nope"); err == nil {
		t.Fatalf("expected error for unknown grammar")
	}
	names := Names()
	if len(names) != 3 || names[0] != "arith" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestKindString(t *testing.T) {
	for k := Space; k <= Word; k++ {
		back, ok := ParseKind(k.String())
		if !ok || back != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), back, ok)
		}
	}
	if Kind(99).String() != "Kind(99)" {
		t.Fatalf("unexpected name for unknown kind")
	}
}

func TestCloseStopsEndlessWord(t *testing.T) {
	for _, sm := range []scanner.StateMachine[Kind]{Words{}, Arith{}} {
		src := &testkit.EndlessSource{R: 'a'}
		e, err := scanner.New[Kind](src, sm, scanner.Options{})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		stream := scanner.Spawn(context.Background(), e)
		for src.Reads() < 1000 {
			time.Sleep(time.Millisecond)
		}

		done := make(chan error, 1)
		go func() { done <- stream.Close() }()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("%T: cancellation must not be an error, got %v", sm, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%T: worker still running after Close; reads=%d", sm, src.Reads())
		}
	}
}
