// Package sqlgen renders parsed questions as INSERT statements for the
// vet_exam_questions table used by the exam front end.
package sqlgen

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
)

const DefaultTable = "vet_exam_questions"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type Options struct {
	Table          string    // default DefaultTable
	WithDifficulty bool      // adds a difficulty column
	GeneratedAt    time.Time // header timestamp; omitted when zero
}

// Write emits one INSERT per question, each preceded by a comment line.
// A single answer is stored as its bare index, several as a JSON array.
func Write(w io.Writer, qs []parser.Question, opts Options) error {
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return fmt.Errorf("sqlgen: invalid table name %q", table)
	}

	bw := bufio.NewWriter(w)
	if len(qs) == 0 {
		fmt.Fprintln(bw, "-- no questions to insert")
		return bw.Flush()
	}
	fmt.Fprintln(bw, "-- question bank import")
	if !opts.GeneratedAt.IsZero() {
		fmt.Fprintf(bw, "-- generated: %s\n", opts.GeneratedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(bw, "-- questions: %d\n\n", len(qs))

	cols := "question_type, stem, options, correct_answer, explanation, subject"
	if opts.WithDifficulty {
		cols += ", difficulty"
	}
	for i, q := range qs {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("sqlgen: question %d options: %w", i+1, err)
		}
		answer, err := answerValue(q)
		if err != nil {
			return fmt.Errorf("sqlgen: question %d answer: %w", i+1, err)
		}
		fmt.Fprintf(bw, "-- question %d: %s\n", i+1, q.Type)
		fmt.Fprintf(bw, "INSERT INTO %s (%s)\nVALUES (\n", table, cols)
		vals := []string{
			Quote(string(q.Type)),
			Quote(q.Stem),
			Quote(string(options)),
			Quote(answer),
			Quote(q.Explanation),
			Quote(q.Subject),
		}
		if opts.WithDifficulty {
			vals = append(vals, strconv.Itoa(q.Difficulty))
		}
		fmt.Fprintf(bw, "    %s\n);\n\n", strings.Join(vals, ",\n    "))
	}
	return bw.Flush()
}

func answerValue(q parser.Question) (string, error) {
	if len(q.AnswerIndices) == 1 {
		return strconv.Itoa(q.AnswerIndices[0]), nil
	}
	b, err := json.Marshal(q.AnswerIndices)
	return string(b), err
}

// Quote returns s as a single-quoted SQL string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
