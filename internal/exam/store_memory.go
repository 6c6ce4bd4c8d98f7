package exam

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

type memoryStore struct {
	mu    sync.RWMutex
	exams map[string]Exam
	runs  map[string]ImportRun
}

// NewInMemoryStore is used by tests and by the CLI when no database is configured.
func NewInMemoryStore() Store {
	return &memoryStore{
		exams: map[string]Exam{},
		runs:  map[string]ImportRun{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	e.Questions = slices.Clone(e.Questions)
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := m.GetExamAdmin(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	return e.Redacted(), nil
}

func (m *memoryStore) GetExamAdmin(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	e.Questions = slices.Clone(e.Questions)
	return e, nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	opts = opts.normalized()
	m.mu.RLock()
	out := []ExamSummary{}
	q := strings.ToLower(opts.Q)
	for _, e := range m.exams {
		if strings.Contains(strings.ToLower(e.Title), q) {
			out = append(out, e.Summary())
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b ExamSummary) int {
		if a.CreatedAt != b.CreatedAt {
			if a.CreatedAt > b.CreatedAt {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	if opts.Offset >= len(out) {
		return []ExamSummary{}, nil
	}
	out = out[opts.Offset:]
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) PutImportRun(_ context.Context, run ImportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().Unix()
	}
	m.runs[run.ID] = run
	return nil
}

func (m *memoryStore) GetImportRun(_ context.Context, id string) (ImportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	if !ok {
		return ImportRun{}, ErrImportRunNotFound
	}
	return r, nil
}
