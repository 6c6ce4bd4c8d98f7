package exam

import (
	"context"
	"errors"
)

var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrImportRunNotFound = errors.New("import run not found")
)

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)      // student-safe (no answer keys)
	GetExamAdmin(ctx context.Context, id string) (Exam, error) // full exam, for export/teachers
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)

	PutImportRun(ctx context.Context, run ImportRun) error
	GetImportRun(ctx context.Context, id string) (ImportRun, error)
}

func (o ListOpts) normalized() ListOpts {
	if o.Limit <= 0 || o.Limit > 200 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
