package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineKind tags a single line independently of the block it belongs to.
type LineKind int

const (
	Continuation LineKind = iota
	ItemStart
	BareOrdinal
	Option
	Answer
	Explanation
	Subject
	Difficulty
)

var lineKindNames = [...]string{
	Continuation: "continuation",
	ItemStart:    "item",
	BareOrdinal:  "ordinal",
	Option:       "option",
	Answer:       "answer",
	Explanation:  "explanation",
	Subject:      "subject",
	Difficulty:   "difficulty",
}

func (k LineKind) String() string {
	if int(k) < len(lineKindNames) {
		return lineKindNames[k]
	}
	return "LineKind(" + strconv.Itoa(int(k)) + ")"
}

// IsLabel reports whether the kind is introduced by a field label.
func (k LineKind) IsLabel() bool {
	switch k {
	case Answer, Explanation, Subject, Difficulty:
		return true
	}
	return false
}

// Line is a classified line. Text holds the content after the marker or
// label, cut from the original (unfolded) line.
type Line struct {
	Kind    LineKind
	Raw     string
	Ordinal string // ItemStart, BareOrdinal
	Letter  rune   // Option, as printed but upper-cased and width-folded
	Text    string
	Extra   string // Answer only: an explanation written on the same line
}

var (
	itemRe        = regexp.MustCompile(`^(\d+)\s*([.。、)])\s*`)
	optionRe      = regexp.MustCompile(`^([A-Ea-e])\s*([.。、)])\s*`)
	bareOrdinalRe = regexp.MustCompile(`(?i)^(?:题号|第|question|no\.?|q)\s*(\d+)\s*题?\s*[.。、)]?$`)

	answerLabel      = labelRe(`正确答案|参考答案|标准答案|答案|correct\s+answer|answer|ans|key`)
	explanationLabel = labelRe(`解析|说明|详解|分析|答案解析|explanation|analysis|rationale`)
	subjectLabel     = labelRe(`科目|分类|subject|category`)
	difficultyLabel  = labelRe(`难度|难度等级|difficulty|level`)

	explanationInline = regexp.MustCompile(`(?i)(?:【\s*(?:解析|说明|详解|分析|explanation|analysis|rationale)\s*】|\[\s*(?:解析|说明|详解|分析|explanation|analysis|rationale)\s*\]|(?:解析|说明|详解|分析|explanation|analysis|rationale)\s*:)\s*`)
)

// labelRe accepts "Label:", "【Label】" and "[Label]" forms. A bare label
// without brackets needs the colon so that prose such as "Answer the
// following" stays a continuation line.
func labelRe(names string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^(?:【\s*(?:` + names + `)\s*】\s*:?|\[\s*(?:` + names + `)\s*\]\s*:?|(?:` + names + `)\s*:)\s*`)
}

// Classify tags one trimmed line.
func Classify(raw string) Line {
	raw = strings.TrimSpace(raw)
	f := fold(raw)
	l := Line{Kind: Continuation, Raw: raw, Text: raw}

	if m := bareOrdinalRe.FindStringSubmatch(f.text); m != nil {
		l.Kind, l.Ordinal, l.Text = BareOrdinal, normalizeOrdinal(m[1]), ""
		return l
	}
	if loc := answerLabel.FindStringIndex(f.text); loc != nil {
		l.Kind = Answer
		rest := f.text[loc[1]:]
		if in := explanationInline.FindStringIndex(rest); in != nil && in[0] > 0 {
			l.Text = strings.TrimSpace(f.rawSlice(loc[1], loc[1]+in[0]))
			l.Extra = strings.TrimSpace(f.rawFrom(loc[1] + in[1]))
			return l
		}
		l.Text = strings.TrimSpace(f.rawFrom(loc[1]))
		return l
	}
	for _, lb := range []struct {
		kind LineKind
		re   *regexp.Regexp
	}{
		{Explanation, explanationLabel},
		{Subject, subjectLabel},
		{Difficulty, difficultyLabel},
	} {
		if loc := lb.re.FindStringIndex(f.text); loc != nil {
			l.Kind = lb.kind
			l.Text = strings.TrimSpace(f.rawFrom(loc[1]))
			return l
		}
	}
	if m := itemRe.FindStringSubmatchIndex(f.text); m != nil && !decimalNumber(f.text, m) {
		l.Kind = ItemStart
		l.Ordinal = normalizeOrdinal(f.text[m[2]:m[3]])
		l.Text = strings.TrimSpace(f.rawFrom(m[1]))
		return l
	}
	if m := optionRe.FindStringSubmatchIndex(f.text); m != nil && !abbreviation(f.text, m) {
		l.Kind = Option
		l.Letter, _ = utf8.DecodeRuneInString(strings.ToUpper(f.text[m[2]:m[3]]))
		l.Text = strings.TrimSpace(f.rawFrom(m[1]))
		return l
	}
	return l
}

// decimalNumber rejects "1.5 mg ..." as an item marker.
func decimalNumber(text string, m []int) bool {
	if text[m[4]:m[5]] != "." || m[5] >= len(text) {
		return false
	}
	return text[m[5]] >= '0' && text[m[5]] <= '9'
}

// abbreviation rejects "E.coli" and "e.g." as option markers: a dot glued to
// a lower-case ASCII letter is not a marker.
func abbreviation(text string, m []int) bool {
	if text[m[4]:m[5]] != "." || m[5] >= len(text) || m[1] != m[5] {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[m[5]:])
	return r < unicode.MaxASCII && unicode.IsLower(r)
}

func normalizeOrdinal(s string) string {
	s = strings.TrimLeft(strings.TrimSpace(s), "0")
	if s == "" {
		return "0"
	}
	return s
}
