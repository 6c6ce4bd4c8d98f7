package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Strategy selects how raw text is cut into blocks.
type Strategy string

const (
	StrategySeparator  Strategy = "separator"
	StrategySharedStem Strategy = "shared-stem"
	StrategyGeneric    Strategy = "generic"
)

// ParseStrategy accepts the strategy names used on the command line.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", "auto":
		return "", nil
	case StrategySeparator:
		return StrategySeparator, nil
	case StrategySharedStem, "shared", "case":
		return StrategySharedStem, nil
	case StrategyGeneric:
		return StrategyGeneric, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Block is the ordered run of lines that make up one candidate question.
type Block struct {
	Index      int
	Lines      []string
	SharedStem string
}

var (
	separatorRe = regexp.MustCompile(`^-{3,}$`)
	// (1～3题共用题干), (1-3共用题干), (Questions 1 to 3 share a stem)
	rangeRe = regexp.MustCompile(`(?i)\(\s*(?:questions?\s*)?(\d+)\s*(?:[~〜\-–—]|to)\s*(\d+)\s*(?:题\s*)?(?:共用题干|shares?\s+(?:a\s+|the\s+|one\s+)?(?:common\s+|same\s+)?stem)\s*\)`)
)

// Detect picks a strategy. A separator line wins over a shared-stem marker
// because it is the least ambiguous signal.
func Detect(text string) Strategy {
	lines := splitLines(text)
	for _, l := range lines {
		if isSeparator(l) {
			return StrategySeparator
		}
	}
	for _, l := range lines {
		if rangeRe.MatchString(foldWidth(l)) {
			return StrategySharedStem
		}
	}
	return StrategyGeneric
}

func isSeparator(line string) bool {
	return separatorRe.MatchString(foldWidth(line))
}

// Segment cuts text into blocks with the given strategy. Blocks are numbered
// in output order.
func Segment(text string, strategy Strategy) ([]Block, []Warning) {
	lines := splitLines(text)
	var (
		blocks []Block
		diag   Diagnostics
	)
	switch strategy {
	case StrategySeparator:
		blocks = segmentSeparated(lines)
	case StrategySharedStem:
		blocks = segmentShared(lines, &diag)
	default:
		blocks = segmentGeneric(lines, "", nil, &diag)
	}
	for i := range blocks {
		blocks[i].Index = i
	}
	return blocks, diag.Warnings
}

func segmentSeparated(lines []string) []Block {
	var (
		blocks []Block
		cur    []string
	)
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, Block{Lines: cur})
			cur = nil
		}
	}
	for _, l := range lines {
		if isSeparator(l) {
			flush()
			continue
		}
		if Classify(l).Kind == BareOrdinal {
			continue
		}
		cur = append(cur, l)
	}
	flush()
	return blocks
}

// ordinalRange is the N..M span announced by a shared-stem marker.
type ordinalRange struct{ from, to int }

func (r *ordinalRange) contains(ordinal string) bool {
	if r == nil {
		return true
	}
	n, err := strconv.Atoi(ordinal)
	return err == nil && n >= r.from && n <= r.to
}

// segmentGeneric splits at item lines. Lines before the first item line are
// a preamble and are skipped; an item line with nothing after it is dropped.
// When sharedStem is set, items whose ordinal lies in rng inherit it.
func segmentGeneric(lines []string, sharedStem string, rng *ordinalRange, diag *Diagnostics) []Block {
	var (
		blocks   []Block
		cur      []string
		ordinal  string
		preamble []string
	)
	flush := func() {
		switch {
		case cur == nil:
		case len(cur) < 2:
			diag.warn(-1, ordinal, WarnBlockDiscarded, "item %q has no content", cur[0])
		default:
			b := Block{Lines: cur}
			if sharedStem != "" && rng.contains(ordinal) {
				b.SharedStem = sharedStem
			}
			blocks = append(blocks, b)
		}
		cur = nil
	}
	for _, l := range lines {
		c := Classify(l)
		switch {
		case c.Kind == ItemStart:
			flush()
			cur, ordinal = []string{l}, c.Ordinal
		case c.Kind == BareOrdinal:
		case cur == nil:
			preamble = append(preamble, l)
		default:
			cur = append(cur, l)
		}
	}
	flush()
	if len(preamble) > 0 && sharedStem == "" {
		diag.warn(-1, "", WarnPreambleSkipped, "%d line(s) before the first item", len(preamble))
	}
	return blocks
}

type stemSegment struct {
	rng   *ordinalRange
	lines []string
}

// segmentShared is a two-level split: the outer level cuts at range markers,
// the inner level cuts each range's content at item lines. The shared stem
// is everything in a range before its first item line.
func segmentShared(lines []string, diag *Diagnostics) []Block {
	segs := []stemSegment{{}}
	for _, l := range lines {
		f := fold(l)
		locs := rangeRe.FindAllStringSubmatchIndex(f.text, -1)
		if locs == nil {
			segs[len(segs)-1].lines = append(segs[len(segs)-1].lines, l)
			continue
		}
		pos := 0
		for _, loc := range locs {
			if before := strings.TrimSpace(f.rawSlice(pos, loc[0])); before != "" {
				segs[len(segs)-1].lines = append(segs[len(segs)-1].lines, before)
			}
			from, _ := strconv.Atoi(f.text[loc[2]:loc[3]])
			to, _ := strconv.Atoi(f.text[loc[4]:loc[5]])
			if from > to {
				from, to = to, from
			}
			segs = append(segs, stemSegment{rng: &ordinalRange{from: from, to: to}})
			pos = loc[1]
		}
		if rest := strings.TrimSpace(f.rawFrom(pos)); rest != "" {
			segs[len(segs)-1].lines = append(segs[len(segs)-1].lines, rest)
		}
	}

	var blocks []Block
	for _, s := range segs {
		if s.rng == nil {
			blocks = append(blocks, segmentGeneric(s.lines, "", nil, diag)...)
			continue
		}
		var stem []string
		i := 0
		for ; i < len(s.lines); i++ {
			if Classify(s.lines[i]).Kind == ItemStart {
				break
			}
			stem = append(stem, s.lines[i])
		}
		shared := strings.Join(stem, " ")
		if shared == "" {
			diag.warn(-1, "", WarnSharedStemEmpty, "questions %d-%d have no shared stem text", s.rng.from, s.rng.to)
		}
		blocks = append(blocks, segmentGeneric(s.lines[i:], shared, s.rng, diag)...)
	}
	return blocks
}
