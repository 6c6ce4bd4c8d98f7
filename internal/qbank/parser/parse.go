// Package parser turns loosely formatted exam text into validated question
// records.
//
// Text is cut into blocks by one of three strategies (separator lines,
// shared-stem range markers, numbered items), every block is extracted into
// a Draft, an optional answer key overwrites answers by ordinal, and each
// draft is assembled into a Question. A malformed block never aborts a parse:
// it is skipped and recorded in Diagnostics.
package parser

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultExplanation = "暂无解析"
	DefaultDifficulty  = 2
	MinDifficulty      = 1
	MaxDifficulty      = 5
)

// ErrInvalidOptions wraps every error Parse returns.
var ErrInvalidOptions = errors.New("invalid parser options")

// Options configures a parse. The zero value is usable.
type Options struct {
	DefaultSubject    string
	DefaultDifficulty int
	Taxonomy          *Taxonomy
	Strategy          Strategy
	Workers           int
}

func (o Options) normalize() (Options, error) {
	if o.Taxonomy == nil {
		o.Taxonomy = DefaultTaxonomy()
	}
	if err := o.Taxonomy.Validate(); err != nil {
		return o, err
	}
	if o.DefaultSubject == "" {
		o.DefaultSubject = o.Taxonomy.fallback()
	} else {
		s, ok := o.Taxonomy.Resolve(o.DefaultSubject)
		if !ok {
			return o, fmt.Errorf("default subject %q is not in the taxonomy", o.DefaultSubject)
		}
		o.DefaultSubject = s
	}
	switch {
	case o.DefaultDifficulty == 0:
		o.DefaultDifficulty = DefaultDifficulty
	case o.DefaultDifficulty < MinDifficulty || o.DefaultDifficulty > MaxDifficulty:
		return o, fmt.Errorf("default difficulty %d out of range %d..%d", o.DefaultDifficulty, MinDifficulty, MaxDifficulty)
	}
	switch o.Strategy {
	case "", StrategySeparator, StrategySharedStem, StrategyGeneric:
	default:
		return o, fmt.Errorf("unknown strategy %q", o.Strategy)
	}
	return o, nil
}

// Question is an assembled record. AnswerIndices are zero-based positions in
// Options, so index 0 is the option printed first.
type Question struct {
	Ordinal       string       `json:"ordinal,omitempty"`
	Stem          string       `json:"stem"`
	SharedStem    string       `json:"shared_stem,omitempty"`
	Options       []string     `json:"options"`
	AnswerIndices []int        `json:"answer_indices"`
	Type          QuestionType `json:"type"`
	Explanation   string       `json:"explanation"`
	Subject       string       `json:"subject"`
	Difficulty    int          `json:"difficulty"`
}

// Answer renders the answer indices as letters, e.g. "BD".
func (q Question) Answer() string { return Letters(q.AnswerIndices) }

type Result struct {
	Questions   []Question  `json:"questions"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Parse extracts questions from text. The error is non-nil only for invalid
// options; malformed input yields failures in the diagnostics instead.
func Parse(text string, opts Options) (Result, error) {
	return parse(text, nil, opts)
}

// ParseWithKey is Parse followed by an answer-key pass over key. Items that
// carry no answer of their own are kept until the key has been applied.
func ParseWithKey(text, key string, opts Options) (Result, error) {
	return parse(text, &key, opts)
}

func parse(text string, key *string, opts Options) (Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = Detect(text)
	}
	blocks, warnings := Segment(text, strategy)
	diag := Diagnostics{
		Strategy: strategy,
		Blocks:   len(blocks),
		Failures: []Failure{},
		Warnings: append([]Warning{}, warnings...),
	}

	drafts := make([]Draft, 0, len(blocks))
	for _, x := range extractAll(blocks, opts.Workers) {
		if x.err != nil {
			diag.fail(x.draft.Block, x.draft.Ordinal, x.err)
			continue
		}
		drafts = append(drafts, x.draft)
	}

	if key != nil {
		ak, kw := ParseAnswerKey(*key)
		diag.Warnings = append(diag.Warnings, kw...)
		m, aw := ak.Apply(drafts)
		diag.Warnings = append(diag.Warnings, aw...)
		diag.AnswerKey = &m
	}

	res := Result{Questions: make([]Question, 0, len(drafts))}
	for _, d := range drafts {
		q, w, err := Assemble(d, opts)
		diag.Warnings = append(diag.Warnings, w...)
		if err != nil {
			diag.fail(d.Block, d.Ordinal, err)
			continue
		}
		res.Questions = append(res.Questions, q)
	}
	slices.SortStableFunc(diag.Failures, func(a, b Failure) int { return a.Block - b.Block })
	res.Diagnostics = diag
	return res, nil
}

type extraction struct {
	draft Draft
	err   error
}

// extractAll runs Extract over every block, concurrently when workers > 1.
// Results are indexed by block so output order never depends on scheduling.
func extractAll(blocks []Block, workers int) []extraction {
	out := make([]extraction, len(blocks))
	if workers <= 1 || len(blocks) < 2 {
		for i, b := range blocks {
			d, err := Extract(b)
			out[i] = extraction{d, err}
		}
		return out
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, b := range blocks {
		i, b := i, b
		g.Go(func() error {
			d, err := Extract(b)
			out[i] = extraction{d, err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
