package exam

import "encoding/json"

type Choice struct {
	ID        string `json:"id,omitempty"`
	LabelHTML string `json:"label_html,omitempty"`
}

type Question struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"` // mcq_single, mcq_multi
	PromptHTML string   `json:"prompt_html,omitempty"`
	Choices    []Choice `json:"choices,omitempty"`
	AnswerKey  []string `json:"answer_key,omitempty"` // choice IDs
	Points     float64  `json:"points"`

	Explanation string `json:"explanation,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Difficulty  int    `json:"difficulty,omitempty"`
	// SourceOrdinal is the item number printed in the imported document.
	SourceOrdinal string `json:"source_ordinal,omitempty"`
}

type Exam struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	TimeLimitSec int        `json:"time_limit_sec"`
	Questions    []Question `json:"questions"`

	Source    string `json:"source,omitempty"` // original filename
	CreatedAt int64  `json:"created_at,omitempty"`
}

type ExamSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
	Source        string `json:"source,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

// ImportRun records one pass of the question-bank importer, successful or not.
type ImportRun struct {
	ID          string          `json:"id"`
	ExamID      string          `json:"exam_id,omitempty"` // empty when nothing was imported
	Source      string          `json:"source"`
	BlobKey     string          `json:"blob_key,omitempty"`
	Strategy    string          `json:"strategy"`
	Questions   int             `json:"questions"`
	Failures    int             `json:"failures"`
	Warnings    int             `json:"warnings"`
	Diagnostics json.RawMessage `json:"diagnostics,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   int64           `json:"created_at"`
}

// Redacted returns a copy without answer keys or explanations, for students.
func (e Exam) Redacted() Exam {
	out := e
	out.Questions = make([]Question, len(e.Questions))
	for i, q := range e.Questions {
		q.AnswerKey = nil
		q.Explanation = ""
		q.Choices = append([]Choice(nil), q.Choices...)
		out.Questions[i] = q
	}
	return out
}

func (e Exam) Summary() ExamSummary {
	return ExamSummary{
		ID:            e.ID,
		Title:         e.Title,
		QuestionCount: len(e.Questions),
		Source:        e.Source,
		CreatedAt:     e.CreatedAt,
	}
}
