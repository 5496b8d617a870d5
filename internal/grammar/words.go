package grammar

import "statescan/internal/scanner"

// Words splits the input into Space runs and Word runs.
// Line breaks and tabs count as space.
type Words struct {
	// DropSpace discards Space runs instead of emitting them.
	DropSpace bool
}

// StartState implements scanner.StateMachine.
func (w Words) StartState() (scanner.StateFn[Kind], error) {
	var start, space, word scanner.StateFn[Kind]

	start = func(s scanner.Scanner[Kind]) (scanner.StateFn[Kind], error) {
		r, err := s.Peek()
		if err != nil {
			if scanner.AtEnd(err) {
				return nil, nil
			}
			return nil, err
		}
		if isSpace(r) {
			return space, nil
		}
		return word, nil
	}

	space = func(s scanner.Scanner[Kind]) (scanner.StateFn[Kind], error) {
		if _, err := scanner.AcceptRun(s, isSpace); err != nil {
			return nil, err
		}
		if w.DropSpace {
			s.Ignore()
			return start, nil
		}
		return start, s.Emit(Space)
	}

	word = func(s scanner.Scanner[Kind]) (scanner.StateFn[Kind], error) {
		if _, err := scanner.AcceptRun(s, func(r rune) bool { return !isSpace(r) }); err != nil {
			return nil, err
		}
		return start, s.Emit(Word)
	}

	return start, nil
}
