package tokfmt

import (
	"fmt"
	"strings"

	"statescan/internal/source"
	"statescan/internal/token"
)

// Format selects the token output encoding.
type Format uint8

const (
	// FormatPretty is aligned human-readable text.
	FormatPretty Format = iota
	// FormatJSON is an indented JSON array of files.
	FormatJSON
	// FormatMsgpack is a stream of msgpack records, one per file.
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses pretty|json|msgpack.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty", "text":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return FormatPretty, fmt.Errorf("unknown format %q (expected: pretty|json|msgpack)", s)
	}
}

// Options configures rendering.
type Options struct {
	Color   bool
	Context bool // печатать строку исходника под ошибкой
	Quiet   bool // только сводка и ошибки, без токенов
}

// Entry is the scan result of one file as seen by the formatters.
type Entry[T fmt.Stringer] struct {
	Path   string
	File   *source.File // optional; enables source context for errors
	Tokens []token.Token[T]
	Err    error
	Cached bool
}
