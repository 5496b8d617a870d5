package grammar

import "fmt"

// Kind classifies the tokens produced by the bundled grammars.
type Kind uint8

const (
	// Invalid is never emitted; it is the zero value.
	Invalid Kind = iota
	// Space is a run of blanks, tabs and line breaks.
	Space
	// Integer is a run of decimal digits.
	Integer
	// Operator is a single arithmetic or grouping character.
	Operator
	// Ident is a letter followed by letters, digits or underscores.
	Ident
	// Word is a run of non-space characters.
	Word
)

var kindNames = [...]string{
	Invalid:  "Invalid",
	Space:    "Space",
	Integer:  "Integer",
	Operator: "Operator",
	Ident:    "Ident",
	Word:     "Word",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return Invalid, false
}
