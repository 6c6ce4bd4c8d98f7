package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// folded is a width-folded copy of a line. Markers are matched against text,
// while content is always cut from raw so that full-width punctuation inside
// a stem or an option survives untouched.
type folded struct {
	raw  string
	text string
	offs []int // offs[i] is the raw byte offset of the rune containing folded byte i
}

func fold(raw string) folded {
	var b strings.Builder
	b.Grow(len(raw))
	offs := make([]int, 0, len(raw)+1)
	for i, r := range raw {
		if f := width.LookupRune(r).Folded(); f != 0 {
			r = f
		}
		for k := utf8.RuneLen(r); k > 0; k-- {
			offs = append(offs, i)
		}
		b.WriteRune(r)
	}
	offs = append(offs, len(raw))
	return folded{raw: raw, text: b.String(), offs: offs}
}

// rawFrom returns the raw text starting at folded byte i.
func (f folded) rawFrom(i int) string {
	return f.raw[f.offs[i]:]
}

// rawSlice returns the raw text between folded bytes i and j.
func (f folded) rawSlice(i, j int) string {
	return f.raw[f.offs[i]:f.offs[j]]
}

func foldWidth(s string) string {
	return fold(s).text
}

// splitLines normalizes line endings and returns trimmed, non-blank lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
