package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeyEntry is one ordinal of a standalone answer key.
type KeyEntry struct {
	Ordinal     string
	Answer      []int
	Explanation string
}

// AnswerKey maps printed ordinals to answers.
type AnswerKey struct {
	entries map[string]*KeyEntry
	order   []string
}

// Len reports the number of distinct ordinals in the key.
func (k AnswerKey) Len() int { return len(k.order) }

// Lookup returns the entry for an ordinal.
func (k AnswerKey) Lookup(ordinal string) (KeyEntry, bool) {
	e, ok := k.entries[normalizeOrdinal(ordinal)]
	if !ok {
		return KeyEntry{}, false
	}
	return *e, true
}

// Entries returns the key in the order ordinals first appeared.
func (k AnswerKey) Entries() []KeyEntry {
	out := make([]KeyEntry, 0, len(k.order))
	for _, o := range k.order {
		out = append(out, *k.entries[o])
	}
	return out
}

// "12.A", "12、BD", "12) a,c", "12 E", "12:B"
var keyEntryRe = regexp.MustCompile(`^(\d+)\s*[.。、):]?\s*([A-Ea-e](?:\s*[,、/]\s*[A-Ea-e]|[A-Ea-e])*)`)

// ParseAnswerKey reads lines of "ordinal answer [explanation]". A line may hold
// several compact entries ("1.A 2.B 3.CD"). A line that does not open with an
// entry continues the previous entry's explanation.
func ParseAnswerKey(text string) (AnswerKey, []Warning) {
	k := AnswerKey{entries: map[string]*KeyEntry{}}
	var (
		diag Diagnostics
		last *KeyEntry
	)
	for _, line := range splitLines(text) {
		f := fold(line)
		pos, found := 0, false
		for {
			m := keyEntryRe.FindStringSubmatchIndex(f.text[pos:])
			if m == nil || followedByLetter(f.text, pos+m[1]) {
				break
			}
			ordinal := normalizeOrdinal(f.text[pos+m[2] : pos+m[3]])
			answer, err := ResolveAnswer(f.text[pos+m[4] : pos+m[5]])
			if err != nil {
				break
			}
			e := &KeyEntry{Ordinal: ordinal, Answer: answer}
			if _, dup := k.entries[ordinal]; !dup {
				k.order = append(k.order, ordinal)
			}
			k.entries[ordinal] = e
			last, found = e, true

			pos += m[1]
			pos += len(f.text[pos:]) - len(strings.TrimLeftFunc(f.text[pos:], keySpace))
			if pos >= len(f.text) {
				break
			}
			if next := keyEntryRe.FindStringSubmatchIndex(f.text[pos:]); next != nil && !followedByLetter(f.text, pos+next[1]) {
				continue
			}
			e.Explanation = entryExplanation(f.rawFrom(pos))
			break
		}
		switch {
		case found:
		case last != nil:
			last.Explanation = joinNonEmpty([]string{last.Explanation, keyExplanation(line)})
		default:
			diag.warn(-1, "", WarnKeyLineIgnored, "%q is not a key entry", line)
		}
	}
	return k, diag.Warnings
}

func keySpace(r rune) bool {
	return unicode.IsSpace(r) || r == ':' || r == ';' || r == ','
}

func followedByLetter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}

// keyExplanation drops an explanation label in front of the text, if any.
func keyExplanation(s string) string {
	s = strings.TrimSpace(s)
	if l := Classify(s); l.Kind == Explanation {
		return l.Text
	}
	return s
}

// bareKeyLabel matches "1.E 解析xxx", where the label runs into the text.
var bareKeyLabel = regexp.MustCompile(`^(?:答案解析|解析|详解)\s*`)

// entryExplanation is keyExplanation for the text that follows an entry on
// the same line, which may also carry a label without a colon.
func entryExplanation(s string) string {
	s = keyExplanation(s)
	return strings.TrimSpace(bareKeyLabel.ReplaceAllString(s, ""))
}

// Apply overwrites the answer of every draft whose ordinal is in the key, and
// its explanation when the key supplies one. An entry naming an option the
// draft does not have is not applied.
func (k AnswerKey) Apply(drafts []Draft) (KeyMatch, []Warning) {
	m := KeyMatch{Entries: k.Len(), Total: len(drafts)}
	var diag Diagnostics
	for i := range drafts {
		d := &drafts[i]
		e, ok := k.Lookup(d.Ordinal)
		if d.Ordinal == "" || !ok {
			continue
		}
		if out := firstOutOfRange(e.Answer, len(d.Options)); out >= 0 {
			diag.warn(d.Block, d.Ordinal, WarnKeyOutOfRange,
				"key answer %s but only %d options", Letters(e.Answer), len(d.Options))
			continue
		}
		d.KeyAnswer = e.Answer
		if e.Explanation != "" {
			d.Explanation = e.Explanation
		}
		m.Matched++
	}
	return m, diag.Warnings
}

func firstOutOfRange(indices []int, n int) int {
	for _, i := range indices {
		if i >= n {
			return i
		}
	}
	return -1
}
