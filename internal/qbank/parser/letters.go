package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// MaxOptions is the number of option letters recognized (A..E).
const MaxOptions = 5

// QuestionType is derived from the number of correct answers.
type QuestionType string

const (
	Single   QuestionType = "single"
	Multiple QuestionType = "multiple"
)

// TypeFor returns Multiple iff more than one answer index is set.
func TypeFor(answers int) QuestionType {
	if answers > 1 {
		return Multiple
	}
	return Single
}

// LetterIndex maps an option letter (any case, half or full width) to its
// zero-based index.
func LetterIndex(r rune) (int, bool) {
	if f := width.LookupRune(r).Folded(); f != 0 {
		r = f
	}
	r = unicode.ToUpper(r)
	if r < 'A' || r >= 'A'+MaxOptions {
		return 0, false
	}
	return int(r - 'A'), true
}

// IndexLetter is the inverse of LetterIndex and always returns upper case.
func IndexLetter(i int) (rune, bool) {
	if i < 0 || i >= MaxOptions {
		return 0, false
	}
	return rune('A' + i), true
}

// Letters renders answer indices as their letters, e.g. [0 2] -> "AC".
func Letters(indices []int) string {
	var b strings.Builder
	for _, i := range indices {
		if r, ok := IndexLetter(i); ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var answerAliases = strings.NewReplacer(
	"①", "A", "②", "B", "③", "C", "④", "D", "⑤", "E",
	"第一个", "A", "第二个", "B", "第三个", "C", "第四个", "D", "第五个", "E",
	"第一项", "A", "第二项", "B", "第三项", "C", "第四项", "D", "第五项", "E",
)

// ResolveAnswer turns a raw answer field into ordered, de-duplicated option
// indices. A run of ASCII letters only counts when every letter in it is an
// option letter, so "BD" and "选项A" resolve while prose such as "see above"
// does not. An answer made only of the digits 1-5 is read as 1-based option
// numbers. Nothing recognizable is an AmbiguousAnswer; there is no default.
func ResolveAnswer(raw string) ([]int, error) {
	s := answerAliases.Replace(foldWidth(raw))

	var (
		out  []int
		seen [MaxOptions]bool
		run  []rune
	)
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	flush := func() {
		defer func() { run = run[:0] }()
		idx := make([]int, 0, len(run))
		for _, r := range run {
			i, ok := LetterIndex(r)
			if !ok {
				return
			}
			idx = append(idx, i)
		}
		for _, i := range idx {
			add(i)
		}
	}
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()

	if len(out) == 0 && onlyOptionNumbers(s) {
		for _, r := range s {
			if r >= '1' && r <= '0'+MaxOptions {
				add(int(r - '1'))
			}
		}
	}
	if len(out) == 0 {
		return nil, failf(AmbiguousAnswer, "no option letter in %q", raw)
	}
	return out, nil
}

func onlyOptionNumbers(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '1' && r <= '0'+MaxOptions:
			digits++
		case unicode.IsSpace(r) || strings.ContainsRune(",;/、&", r):
		default:
			return false
		}
	}
	return digits > 0
}
