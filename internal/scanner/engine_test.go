package scanner_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode"

	"statescan/internal/scanner"
	"statescan/internal/source"
	"statescan/internal/testkit"
	"statescan/internal/token"
)

type kind uint8

const (
	kInteger kind = iota + 1
	kOperator
	kChar
)

func (k kind) String() string {
	switch k {
	case kInteger:
		return "Integer"
	case kOperator:
		return "Operator"
	case kChar:
		return "Char"
	default:
		return "?"
	}
}

// eachChar emits every character as its own token.
func eachChar(s scanner.Scanner[kind]) (scanner.StateFn[kind], error) {
	if _, err := s.Next(); err != nil {
		if scanner.AtEnd(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.Emit(kChar); err != nil {
		return nil, err
	}
	return eachChar, nil
}

// digitsAndOps splits digit runs from single operator characters.
func digitsAndOps(s scanner.Scanner[kind]) (scanner.StateFn[kind], error) {
	r, err := s.Peek()
	if err != nil {
		if scanner.AtEnd(err) {
			return nil, nil
		}
		return nil, err
	}
	if unicode.IsDigit(r) {
		if _, err := scanner.AcceptRun(s, unicode.IsDigit); err != nil {
			return nil, err
		}
		return digitsAndOps, s.Emit(kInteger)
	}
	if _, err := s.Next(); err != nil {
		return nil, err
	}
	return digitsAndOps, s.Emit(kOperator)
}

func collect(t *testing.T, input string, fn scanner.StateFn[kind]) ([]token.Token[kind], error) {
	t.Helper()
	return scanner.Collect(context.Background(), source.NewString(input), scanner.Start[kind](fn), scanner.Options{})
}

func TestNewValidatesStateMachine(t *testing.T) {
	src := source.NewString("x")

	if _, err := scanner.New[kind](nil, scanner.Start[kind](eachChar), scanner.Options{}); !errors.Is(err, scanner.ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := scanner.New[kind](src, nil, scanner.Options{}); !errors.Is(err, scanner.ErrNilStateMachine) {
		t.Fatalf("expected ErrNilStateMachine, got %v", err)
	}
	if _, err := scanner.New[kind](src, scanner.Start[kind](nil), scanner.Options{}); !errors.Is(err, scanner.ErrNoStartState) {
		t.Fatalf("expected ErrNoStartState, got %v", err)
	}

	boom := errors.New("bad grammar")
	if _, err := scanner.New[kind](src, failingMachine{err: boom}, scanner.Options{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped start error, got %v", err)
	}
	if _, err := scanner.New[kind](src, failingMachine{}, scanner.Options{}); !errors.Is(err, scanner.ErrNoStartState) {
		t.Fatalf("expected ErrNoStartState for empty grammar, got %v", err)
	}
}

type failingMachine struct{ err error }

func (m failingMachine) StartState() (scanner.StateFn[kind], error) { return nil, m.err }

func TestScenarioDigitsAndOperators(t *testing.T) {
	toks, err := collect(t, "12+3", digitsAndOps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Token[kind]{
		{Pos: source.Pos{Offset: 0, Line: 0, Col: 0}, Kind: kInteger, Text: "12"},
		{Pos: source.Pos{Offset: 2, Line: 0, Col: 2}, Kind: kOperator, Text: "+"},
		{Pos: source.Pos{Offset: 3, Line: 0, Col: 3}, Kind: kInteger, Text: "3"},
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], toks[i])
		}
	}
}

func TestTokenCoverageAndContiguity(t *testing.T) {
	inputs := []string{"", "1", "12+34*(5-6)", "7\n8\n\n+9", "αβ12γ"}
	for _, in := range inputs {
		toks, err := collect(t, in, digitsAndOps)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if err := testkit.CheckCoverage(toks, in); err != nil {
			t.Errorf("%q: %v", in, err)
		}
		if err := testkit.CheckContiguous(toks); err != nil {
			t.Errorf("%q: %v", in, err)
		}
	}
}

// TestScenarioDecodeFailure: токены до сбоя доставлены, ошибка приходит на Wait.
func TestScenarioDecodeFailure(t *testing.T) {
	e, err := scanner.New[kind](testkit.FailAfter("abcdef", 3), scanner.Start[kind](eachChar), scanner.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stream := scanner.Spawn(context.Background(), e)

	var toks []token.Token[kind]
	for tok := range stream.Tokens() {
		toks = append(toks, tok)
	}
	if err := testkit.CheckOrder(toks, "a", "b", "c"); err != nil {
		t.Fatal(err)
	}

	err = stream.Wait()
	if !errors.Is(err, source.ErrDecode) {
		t.Fatalf("expected decode error on join, got %v", err)
	}
	var scanErr *scanner.Error
	if !errors.As(err, &scanErr) {
		t.Fatalf("expected *scanner.Error, got %T", err)
	}
	if scanErr.Pos.Offset != 3 {
		t.Fatalf("expected failure at offset 3, got %+v", scanErr.Pos)
	}
}

func TestOrdering(t *testing.T) {
	const n = 2000
	var sb strings.Builder
	want := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c := string(rune('a' + i%26))
		sb.WriteString(c)
		want = append(want, c)
	}

	// небуферизованный канал: максимум переключений между горутинами
	e, err := scanner.New[kind](source.NewString(sb.String()), scanner.Start[kind](eachChar), scanner.Options{Buffer: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stream := scanner.Spawn(context.Background(), e)
	var toks []token.Token[kind]
	for tok := range stream.All() {
		toks = append(toks, tok)
	}
	if err := stream.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := testkit.CheckOrder(toks, want...); err != nil {
		t.Fatal(err)
	}
	for i, tok := range toks {
		if tok.Pos.Offset != uint64(i) {
			t.Fatalf("token %d at offset %d", i, tok.Pos.Offset)
		}
	}
}

func TestZeroEmissionGrammar(t *testing.T) {
	var consume scanner.StateFn[kind]
	consume = func(s scanner.Scanner[kind]) (scanner.StateFn[kind], error) {
		if _, err := s.Next(); err != nil {
			if scanner.AtEnd(err) {
				return nil, nil
			}
			return nil, err
		}
		return consume, nil
	}
	toks, err := collect(t, "silent", consume)
	if err != nil || len(toks) != 0 {
		t.Fatalf("expected no tokens and no error, got %v, %v", toks, err)
	}
}

func TestRunTwiceIsRejected(t *testing.T) {
	e, err := scanner.New[kind](source.NewString("ab"), scanner.Start[kind](eachChar), scanner.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := make(chan token.Token[kind], 8)
	if err := e.Run(context.Background(), out); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if e.Emitted() != 2 || len(out) != 2 {
		t.Fatalf("expected 2 tokens, emitted=%d buffered=%d", e.Emitted(), len(out))
	}
	if err := e.Run(context.Background(), out); !errors.Is(err, scanner.ErrEngineConsumed) {
		t.Fatalf("expected ErrEngineConsumed, got %v", err)
	}
	if err := scanner.Spawn(context.Background(), e).Wait(); !errors.Is(err, scanner.ErrEngineConsumed) {
		t.Fatalf("expected ErrEngineConsumed from Spawn, got %v", err)
	}
}

func TestRunNilOutput(t *testing.T) {
	e, err := scanner.New[kind](source.NewString("a"), scanner.Start[kind](eachChar), scanner.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Run(context.Background(), nil); !errors.Is(err, scanner.ErrNilOutput) {
		t.Fatalf("expected ErrNilOutput, got %v", err)
	}
}

func TestMaxPending(t *testing.T) {
	var greedy scanner.StateFn[kind]
	greedy = func(s scanner.Scanner[kind]) (scanner.StateFn[kind], error) {
		if _, err := s.Next(); err != nil {
			if scanner.AtEnd(err) {
				return nil, s.Emit(kChar)
			}
			return nil, err
		}
		return greedy, nil
	}

	opts := scanner.Options{MaxPending: 4}
	toks, err := scanner.Collect(context.Background(), source.NewString("abcd"), scanner.Start[kind](greedy), opts)
	if err != nil || len(toks) != 1 || toks[0].Text != "abcd" {
		t.Fatalf("token at the limit should pass: %v, %v", toks, err)
	}

	_, err = scanner.Collect(context.Background(), source.NewString("abcde"), scanner.Start[kind](greedy), opts)
	if !errors.Is(err, scanner.ErrTokenTooLong) {
		t.Fatalf("expected ErrTokenTooLong, got %v", err)
	}
}

func TestSharedSourceAcrossEngines(t *testing.T) {
	const input = "0123456789abcdefghij"
	shared := source.Share(source.NewString(input))

	results := make(chan []token.Token[kind], 2)
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			toks, err := scanner.Collect(context.Background(), shared, scanner.Start[kind](eachChar), scanner.Options{})
			results <- toks
			errs <- err
		}()
	}

	seen := make(map[string]int)
	for i := 0; i < 2; i++ {
		for _, tok := range <-results {
			seen[tok.Text]++
		}
		if err := <-errs; err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(seen) != len(input) {
		t.Fatalf("expected %d distinct characters, got %d", len(input), len(seen))
	}
	for c, n := range seen {
		if n != 1 {
			t.Fatalf("character %q delivered %d times", c, n)
		}
	}
}
