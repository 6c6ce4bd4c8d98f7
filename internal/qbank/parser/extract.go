package parser

import "strings"

// Draft is a question whose required fields have been found but whose answer
// has not been resolved yet. Only Assemble turns it into a Question.
type Draft struct {
	Block       int
	Ordinal     string
	Stem        string
	SharedStem  string
	Options     []string
	RawAnswer   string
	HasAnswer   bool
	Explanation string
	Subject     string
	Difficulty  string

	// KeyAnswer is set by AnswerKey.Apply and takes precedence over RawAnswer.
	KeyAnswer []int
}

// Extract builds a draft from one block. The returned draft carries Block and,
// once the item line has been seen, Ordinal even when err is non-nil so the
// caller can report where the failure happened.
func Extract(b Block) (Draft, error) {
	d := Draft{Block: b.Index, SharedStem: b.SharedStem}

	var (
		seenItem bool
		seenBody bool // an option or answer has been seen; later prose is dropped
		inExpl   bool
		prefix   []string
		stem     []string
		expl     []string
	)
	for _, raw := range b.Lines {
		l := Classify(raw)
		if inExpl {
			// Only an option or a label ends an explanation; numbered
			// points such as "1）..." belong to it.
			switch {
			case l.Kind == Continuation:
				expl = append(expl, l.Text)
				continue
			case seenItem && (l.Kind == ItemStart || l.Kind == BareOrdinal):
				expl = append(expl, l.Raw)
				continue
			}
			inExpl = false
		}
		switch l.Kind {
		case ItemStart:
			switch {
			case !seenItem:
				seenItem = true
				d.Ordinal = l.Ordinal
				stem = append(stem, l.Text)
			case !seenBody:
				stem = append(stem, l.Raw)
			}
		case Option:
			d.Options = append(d.Options, l.Text)
			seenBody = true
		case Answer:
			seenBody = true
			if d.HasAnswer {
				continue
			}
			d.RawAnswer, d.HasAnswer = l.Text, true
			if l.Extra != "" {
				expl = append(expl, l.Extra)
				inExpl = true
			}
		case Explanation:
			if l.Text != "" {
				expl = append(expl, l.Text)
			}
			inExpl = true
		case Subject:
			if d.Subject == "" {
				d.Subject = l.Text
			}
		case Difficulty:
			if d.Difficulty == "" {
				d.Difficulty = l.Text
			}
		case BareOrdinal:
		default:
			switch {
			case !seenItem:
				prefix = append(prefix, l.Text)
			case !seenBody:
				stem = append(stem, l.Text)
			}
		}
	}
	d.Explanation = joinNonEmpty(expl)

	if !seenItem {
		return d, failf(MissingStem, "no numbered item line in %d line(s)", len(b.Lines))
	}
	d.Stem = joinNonEmpty(append(append([]string{d.SharedStem}, prefix...), stem...))
	if d.Stem == "" {
		return d, failf(MissingStem, "item %s has no text", d.Ordinal)
	}
	if n := len(d.Options); n < 2 || n > MaxOptions {
		return d, failf(MissingOptions, "found %d option(s), want 2 to %d", n, MaxOptions)
	}
	return d, nil
}

func joinNonEmpty(parts []string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
