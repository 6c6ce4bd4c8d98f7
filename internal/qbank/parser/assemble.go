package parser

import (
	"strconv"
	"strings"
)

// Assemble resolves a draft's answer, subject and difficulty into a Question.
// opts must already be normalized (see Options).
func Assemble(d Draft, opts Options) (Question, []Warning, error) {
	var diag Diagnostics

	answer := d.KeyAnswer
	if answer == nil {
		if !d.HasAnswer {
			return Question{}, nil, failf(MissingAnswer, "no answer line for item %s", d.Ordinal)
		}
		var err error
		if answer, err = ResolveAnswer(d.RawAnswer); err != nil {
			return Question{}, nil, err
		}
	}
	if i := firstOutOfRange(answer, len(d.Options)); i >= 0 {
		return Question{}, nil, failf(AnswerOutOfRange, "answer %s but only %d options", Letters(answer), len(d.Options))
	}

	subject, fellBack := opts.Taxonomy.Normalize(d.Subject, opts.DefaultSubject)
	if fellBack && strings.TrimSpace(d.Subject) != "" {
		diag.warn(d.Block, d.Ordinal, WarnSubjectFallback, "subject %q not recognized, using %s", d.Subject, subject)
	}

	difficulty := opts.DefaultDifficulty
	if d.Difficulty != "" {
		if n, ok := parseDifficulty(d.Difficulty); ok {
			difficulty = n
		} else {
			diag.warn(d.Block, d.Ordinal, WarnDifficultyInvalid, "difficulty %q, using %d", d.Difficulty, difficulty)
		}
	}

	explanation := d.Explanation
	if explanation == "" {
		explanation = DefaultExplanation
	}

	q := Question{
		Ordinal:       d.Ordinal,
		Stem:          d.Stem,
		SharedStem:    d.SharedStem,
		Options:       append([]string(nil), d.Options...),
		AnswerIndices: append([]int(nil), answer...),
		Type:          TypeFor(len(answer)),
		Explanation:   explanation,
		Subject:       subject,
		Difficulty:    difficulty,
	}
	return q, diag.Warnings, nil
}

func parseDifficulty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(foldWidth(s)))
	if err != nil || n < MinDifficulty || n > MaxDifficulty {
		return 0, false
	}
	return n, true
}
