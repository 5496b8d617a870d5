package tokfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"statescan/internal/token"
)

// TokenOutput is the serialized form of one token. Line and Col are 1-based.
type TokenOutput struct {
	Kind   string `json:"kind" msgpack:"kind"`
	Text   string `json:"text" msgpack:"text"`
	Offset uint64 `json:"offset" msgpack:"offset"`
	Line   uint32 `json:"line" msgpack:"line"`
	Col    uint32 `json:"col" msgpack:"col"`
}

// FileOutput is the serialized form of one scanned file.
type FileOutput struct {
	Path   string        `json:"path" msgpack:"path"`
	Tokens []TokenOutput `json:"tokens" msgpack:"tokens"`
	Error  string        `json:"error,omitempty" msgpack:"error,omitempty"`
	Cached bool          `json:"cached,omitempty" msgpack:"cached,omitempty"`
}

func buildFileOutput[T fmt.Stringer](e Entry[T]) (FileOutput, error) {
	out := FileOutput{
		Path:   e.Path,
		Tokens: make([]TokenOutput, 0, len(e.Tokens)),
		Cached: e.Cached,
	}
	for _, tok := range e.Tokens {
		to, err := buildTokenOutput(tok)
		if err != nil {
			return out, fmt.Errorf("%s: %w", e.Path, err)
		}
		out.Tokens = append(out.Tokens, to)
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return out, nil
}

func buildTokenOutput[T fmt.Stringer](tok token.Token[T]) (TokenOutput, error) {
	lc, err := tok.Pos.LineCol()
	if err != nil {
		return TokenOutput{}, err
	}
	return TokenOutput{
		Kind:   tok.Kind.String(),
		Text:   tok.Text,
		Offset: tok.Pos.Offset,
		Line:   lc.Line,
		Col:    lc.Col,
	}, nil
}

// WriteJSON выводит все файлы одним JSON-массивом.
func WriteJSON[T fmt.Stringer](w io.Writer, entries []Entry[T]) error {
	output := make([]FileOutput, 0, len(entries))
	for _, e := range entries {
		fo, err := buildFileOutput(e)
		if err != nil {
			return err
		}
		output = append(output, fo)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// WriteMsgpack writes a header with the file count followed by one
// FileOutput record per entry.
func WriteMsgpack[T fmt.Stringer](w io.Writer, entries []Entry[T]) error {
	count, err := safecast.Conv[uint32](len(entries))
	if err != nil {
		return fmt.Errorf("too many files: %w", err)
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.EncodeUint32(count); err != nil {
		return err
	}
	for _, e := range entries {
		fo, err := buildFileOutput(e)
		if err != nil {
			return err
		}
		if err := enc.Encode(&fo); err != nil {
			return err
		}
	}
	return nil
}

const maxPrealloc = 1024

// ReadMsgpack decodes a stream produced by WriteMsgpack.
func ReadMsgpack(r io.Reader) ([]FileOutput, error) {
	dec := msgpack.NewDecoder(r)
	count, err := dec.DecodeUint32()
	if err != nil {
		return nil, err
	}
	// заголовок не доверенный: растим слайс по мере чтения
	out := make([]FileOutput, 0, min(count, maxPrealloc))
	for range count {
		var fo FileOutput
		if err := dec.Decode(&fo); err != nil {
			return out, err
		}
		out = append(out, fo)
	}
	return out, nil
}

// Write dispatches on format.
func Write[T fmt.Stringer](w io.Writer, format Format, entries []Entry[T], opts Options) error {
	switch format {
	case FormatPretty:
		return WritePretty(w, entries, opts)
	case FormatJSON:
		return WriteJSON(w, entries)
	case FormatMsgpack:
		return WriteMsgpack(w, entries)
	default:
		return fmt.Errorf("unsupported format %v", format)
	}
}
