package qbank

import (
	"fmt"
	"html"
	"strings"

	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
)

const (
	TypeSingle = "mcq_single"
	TypeMulti  = "mcq_multi"
)

// ToExam maps parsed records onto the exam model: one choice per option with
// letter IDs, the answer key as letters, one point per question.
func ToExam(id, title, source string, qs []parser.Question) exam.Exam {
	ex := exam.Exam{
		ID:        id,
		Title:     title,
		Source:    source,
		Questions: make([]exam.Question, 0, len(qs)),
	}
	for i, q := range qs {
		eq := exam.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Type:          TypeSingle,
			PromptHTML:    textHTML(q.Stem),
			Points:        1,
			Explanation:   q.Explanation,
			Subject:       q.Subject,
			Difficulty:    q.Difficulty,
			SourceOrdinal: q.Ordinal,
		}
		if q.Type == parser.Multiple {
			eq.Type = TypeMulti
		}
		for j, opt := range q.Options {
			eq.Choices = append(eq.Choices, exam.Choice{ID: letter(j), LabelHTML: textHTML(opt)})
		}
		for _, a := range q.AnswerIndices {
			eq.AnswerKey = append(eq.AnswerKey, letter(a))
		}
		ex.Questions = append(ex.Questions, eq)
	}
	return ex
}

func textHTML(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br/>")
}

func letter(i int) string {
	r, _ := parser.IndexLetter(i)
	return string(r)
}

// FromExam recovers parser records from a stored exam, for statement export.
// Questions without a usable answer key are skipped.
func FromExam(ex exam.Exam) []parser.Question {
	out := make([]parser.Question, 0, len(ex.Questions))
	for _, eq := range ex.Questions {
		q := parser.Question{
			Ordinal:     eq.SourceOrdinal,
			Stem:        htmlText(eq.PromptHTML),
			Explanation: eq.Explanation,
			Subject:     eq.Subject,
			Difficulty:  eq.Difficulty,
		}
		for _, c := range eq.Choices {
			q.Options = append(q.Options, htmlText(c.LabelHTML))
		}
		for _, k := range eq.AnswerKey {
			r := []rune(k)
			if len(r) != 1 {
				continue
			}
			if i, ok := parser.LetterIndex(r[0]); ok && i < len(q.Options) {
				q.AnswerIndices = append(q.AnswerIndices, i)
			}
		}
		if len(q.AnswerIndices) == 0 {
			continue
		}
		q.Type = parser.TypeFor(len(q.AnswerIndices))
		out = append(out, q)
	}
	return out
}

func htmlText(s string) string {
	return html.UnescapeString(strings.ReplaceAll(s, "<br/>", "\n"))
}
