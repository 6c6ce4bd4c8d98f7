package parser

import (
	"errors"
	"fmt"
)

// FailureKind names the reason a block produced no question.
type FailureKind string

const (
	MissingStem      FailureKind = "missing_stem"
	MissingOptions   FailureKind = "missing_options"
	MissingAnswer    FailureKind = "missing_answer"
	AnswerOutOfRange FailureKind = "answer_out_of_range"
	AmbiguousAnswer  FailureKind = "ambiguous_answer"

	// Unclassified marks an error that did not come as a *BlockError.
	Unclassified FailureKind = "unclassified"
)

// BlockError aborts the extraction of a single block. It never aborts a parse.
type BlockError struct {
	Kind   FailureKind
	Detail string
}

func (e *BlockError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

func failf(kind FailureKind, format string, args ...any) error {
	return &BlockError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WarningKind names a non-fatal observation made during a parse.
type WarningKind string

const (
	WarnSubjectFallback   WarningKind = "subject_fallback"
	WarnDifficultyInvalid WarningKind = "difficulty_invalid"
	WarnPreambleSkipped   WarningKind = "preamble_skipped"
	WarnBlockDiscarded    WarningKind = "block_discarded"
	WarnSharedStemEmpty   WarningKind = "shared_stem_empty"
	WarnKeyLineIgnored    WarningKind = "key_line_ignored"
	WarnKeyOutOfRange     WarningKind = "key_answer_out_of_range"
)

// Failure records a block that did not yield a question.
type Failure struct {
	Block   int         `json:"block"`
	Ordinal string      `json:"ordinal,omitempty"`
	Kind    FailureKind `json:"kind"`
	Detail  string      `json:"detail,omitempty"`
}

// Warning records a non-fatal note. Block is -1 when the note is not tied to
// a segmented block.
type Warning struct {
	Block   int         `json:"block"`
	Ordinal string      `json:"ordinal,omitempty"`
	Kind    WarningKind `json:"kind"`
	Detail  string      `json:"detail,omitempty"`
}

// KeyMatch summarizes an answer-key pass.
type KeyMatch struct {
	Entries int `json:"entries"`
	Matched int `json:"matched"`
	Total   int `json:"total"`
}

// Diagnostics is everything a parse has to say besides the questions.
type Diagnostics struct {
	Strategy  Strategy  `json:"strategy"`
	Blocks    int       `json:"blocks"`
	Failures  []Failure `json:"failures"`
	Warnings  []Warning `json:"warnings"`
	AnswerKey *KeyMatch `json:"answer_key,omitempty"`
}

func (d *Diagnostics) fail(block int, ordinal string, err error) {
	f := Failure{Block: block, Ordinal: ordinal}
	var be *BlockError
	if errors.As(err, &be) {
		f.Kind, f.Detail = be.Kind, be.Detail
	} else {
		f.Kind, f.Detail = Unclassified, err.Error()
	}
	d.Failures = append(d.Failures, f)
}

func (d *Diagnostics) warn(block int, ordinal string, kind WarningKind, format string, args ...any) {
	d.Warnings = append(d.Warnings, Warning{
		Block:   block,
		Ordinal: ordinal,
		Kind:    kind,
		Detail:  fmt.Sprintf(format, args...),
	})
}
