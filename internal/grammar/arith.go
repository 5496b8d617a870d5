package grammar

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"statescan/internal/scanner"
)

// ErrUnexpectedChar is returned by arith on a character it has no rule for.
var ErrUnexpectedChar = errors.New("unexpected character")

const arithOperators = "+-*/%^=()<>!&|,;"

// Arith recognizes integers, identifiers, operators and whitespace.
// Every character of the input ends up in exactly one token.
type Arith struct{}

// StartState implements scanner.StateMachine.
func (Arith) StartState() (scanner.StateFn[Kind], error) {
	return arithStart, nil
}

func arithStart(s scanner.Scanner[Kind]) (scanner.StateFn[Kind], error) {
	r, err := s.Peek()
	if err != nil {
		if scanner.AtEnd(err) {
			return nil, nil
		}
		return nil, err
	}
	switch {
	case isSpace(r):
		return arithSpace, nil
	case unicode.IsDigit(r):
		return arithInteger, nil
	case unicode.IsLetter(r) || r == '_':
		return arithIdent, nil
	case strings.ContainsRune(arithOperators, r):
		return arithOperator, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnexpectedChar, r)
	}
}

func arithSpace(s scanner.Scanner[Kind]) (scanner.StateFn[Kind], error) {
	return emitRun(s, isSpace, Space)
}

func arithInteger(s scanner.Scanner[Kind]) (scanner.StateFn[Kind], error) {
	return emitRun(s, unicode.IsDigit, Integer)
}

func arithIdent(s scanner.Scanner[Kind]) (scanner.StateFn[Kind], error) {
	return emitRun(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
	}, Ident)
}

func arithOperator(s scanner.Scanner[Kind]) (scanner.StateFn[Kind], error) {
	if _, err := s.Next(); err != nil {
		return nil, err
	}
	if err := s.Emit(Operator); err != nil {
		return nil, err
	}
	return arithStart, nil
}

func emitRun(s scanner.Scanner[Kind], pred func(rune) bool, kind Kind) (scanner.StateFn[Kind], error) {
	if _, err := scanner.AcceptRun(s, pred); err != nil {
		return nil, err
	}
	if err := s.Emit(kind); err != nil {
		return nil, err
	}
	return arithStart, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
