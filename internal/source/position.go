package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Pos tracks where a scanner is in its input. All fields are 0-based.
//
// Offset counts characters (not bytes). Line and Col are maintained
// incrementally by Advance and Retreat and are never recomputed by rescanning.
type Pos struct {
	Offset uint64
	Line   uint64
	Col    uint64
}

// Advance moves the position forward over r.
func (p *Pos) Advance(r rune) {
	p.Offset++
	if r == '\n' {
		p.Line++
		p.Col = 0
		return
	}
	p.Col++
}

// Retreat moves the position back over r.
// A line boundary, once crossed, is never un-crossed: retreating over '\n'
// fails with ErrRetreatNewline and leaves p untouched.
func (p *Pos) Retreat(r rune) error {
	if r == '\n' {
		return ErrRetreatNewline
	}
	if p.Offset == 0 || p.Col == 0 {
		return ErrRetreatStart
	}
	p.Offset--
	p.Col--
	return nil
}

// LineCol converts p to the 1-based form used in human-facing output.
func (p Pos) LineCol() (LineCol, error) {
	line, err := safecast.Conv[uint32](p.Line + 1)
	if err != nil {
		return LineCol{}, fmt.Errorf("line overflow: %w", err)
	}
	col, err := safecast.Conv[uint32](p.Col + 1)
	if err != nil {
		return LineCol{}, fmt.Errorf("column overflow: %w", err)
	}
	return LineCol{Line: line, Col: col}, nil
}

// String renders p as 1-based "line:col".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Col+1)
}
