package tokfmt

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"statescan/internal/scanner"
	"statescan/internal/source"
)

var kindPalette = []color.Attribute{
	color.FgCyan,
	color.FgGreen,
	color.FgYellow,
	color.FgMagenta,
	color.FgBlue,
}

type painter struct {
	enabled bool
	cache   map[string]*color.Color
}

func newPainter(enabled bool) *painter {
	return &painter{enabled: enabled, cache: make(map[string]*color.Color)}
}

func (p *painter) style(key string, attrs ...color.Attribute) *color.Color {
	if c, ok := p.cache[key]; ok {
		return c
	}
	c := color.New(attrs...)
	if p.enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	p.cache[key] = c
	return c
}

func (p *painter) kind(name string) *color.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	attr := kindPalette[h.Sum32()%uint32(len(kindPalette))]
	return p.style("kind:"+name, attr)
}

func (p *painter) header() *color.Color { return p.style("header", color.Bold) }
func (p *painter) dim() *color.Color    { return p.style("dim", color.Faint) }
func (p *painter) err() *color.Color    { return p.style("error", color.FgRed, color.Bold) }

// WritePretty prints every entry as an aligned token table:
//
//	path (N tokens)
//	    1  1:1   Integer  "12"
//
// followed by the scan error, if any, with the offending source line.
func WritePretty[T fmt.Stringer](w io.Writer, entries []Entry[T], opts Options) error {
	p := newPainter(opts.Color)
	for i, e := range entries {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writePrettyEntry(w, p, e, opts); err != nil {
			return err
		}
	}
	return nil
}

func writePrettyEntry[T fmt.Stringer](w io.Writer, p *painter, e Entry[T], opts Options) error {
	suffix := fmt.Sprintf("(%d tokens", len(e.Tokens))
	if e.Cached {
		suffix += ", cached"
	}
	suffix += ")"
	if _, err := fmt.Fprintf(w, "%s %s\n", p.header().Sprint(e.Path), p.dim().Sprint(suffix)); err != nil {
		return err
	}

	if !opts.Quiet && len(e.Tokens) > 0 {
		idxWidth := len(strconv.Itoa(len(e.Tokens)))
		posWidth, kindWidth := 0, 0
		positions := make([]string, len(e.Tokens))
		for i, tok := range e.Tokens {
			positions[i] = tok.Pos.String()
			posWidth = max(posWidth, runewidth.StringWidth(positions[i]))
			kindWidth = max(kindWidth, runewidth.StringWidth(tok.Kind.String()))
		}
		for i, tok := range e.Tokens {
			kind := tok.Kind.String()
			_, err := fmt.Fprintf(w, "  %*d  %s  %s  %s\n",
				idxWidth, i+1,
				runewidth.FillRight(positions[i], posWidth),
				p.kind(kind).Sprint(runewidth.FillRight(kind, kindWidth)),
				strconv.Quote(tok.Text))
			if err != nil {
				return err
			}
		}
	}

	if e.Err != nil {
		return writeScanError(w, p, e.Path, e.File, e.Err, opts.Context)
	}
	return nil
}

func writeScanError(w io.Writer, p *painter, path string, file *source.File, scanErr error, withContext bool) error {
	var serr *scanner.Error
	if !errors.As(scanErr, &serr) {
		_, err := fmt.Fprintf(w, "%s %s: %v\n", p.err().Sprint("error:"), path, scanErr)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s:%s: %v\n", p.err().Sprint("error:"), path, serr.Pos, serr.Err); err != nil {
		return err
	}
	if !withContext || file == nil {
		return nil
	}
	lc, err := serr.Pos.LineCol()
	if err != nil {
		return nil
	}
	line := file.GetLine(lc.Line)
	if line == "" {
		return nil
	}
	gutter := strconv.FormatUint(uint64(lc.Line), 10)
	caretCol := runewidth.StringWidth(runePrefix(line, serr.Pos.Col))
	pad := strings.Repeat(" ", len(gutter))
	_, err = fmt.Fprintf(w, "  %s | %s\n  %s | %s%s\n",
		p.dim().Sprint(gutter), line,
		pad, strings.Repeat(" ", caretCol), p.err().Sprint("^"))
	return err
}

// runePrefix returns the first n characters of s.
func runePrefix(s string, n uint64) string {
	var i uint64
	for off := range s {
		if i == n {
			return s[:off]
		}
		i++
	}
	return s
}
