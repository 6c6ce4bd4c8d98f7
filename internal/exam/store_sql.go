package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return err
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,title,time_limit_sec,questions_json,question_count,source,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, time_limit_sec=EXCLUDED.time_limit_sec,
			questions_json=EXCLUDED.questions_json, question_count=EXCLUDED.question_count, source=EXCLUDED.source`,
		e.ID, e.Title, e.TimeLimitSec, string(qj), len(e.Questions), e.Source, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("put exam %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := s.GetExamAdmin(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	return e.Redacted(), nil
}

func (s *SQLStore) GetExamAdmin(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,time_limit_sec,questions_json,source,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var qjson string
	if err := row.Scan(&e.ID, &e.Title, &e.TimeLimitSec, &qjson, &e.Source, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Exam{}, fmt.Errorf("exam %s: decode questions: %w", id, err)
	}
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	opts = opts.normalized()
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,question_count,source,created_at FROM exams
		WHERE LOWER(title) LIKE LOWER($1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		"%"+opts.Q+"%", opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExamSummary{}
	for rows.Next() {
		var x ExamSummary
		if err := rows.Scan(&x.ID, &x.Title, &x.QuestionCount, &x.Source, &x.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutImportRun(ctx context.Context, run ImportRun) error {
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().Unix()
	}
	diag := string(run.Diagnostics)
	if diag == "" {
		diag = "{}"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO import_runs
		(id,exam_id,source,blob_key,strategy,questions,failures,warnings,diagnostics_json,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		run.ID, run.ExamID, run.Source, run.BlobKey, run.Strategy,
		run.Questions, run.Failures, run.Warnings, diag, run.CreatedBy, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("put import run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLStore) GetImportRun(ctx context.Context, id string) (ImportRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_id,source,blob_key,strategy,questions,failures,warnings,diagnostics_json,created_by,created_at
		FROM import_runs WHERE id=$1`, id)
	var r ImportRun
	var diag string
	err := row.Scan(&r.ID, &r.ExamID, &r.Source, &r.BlobKey, &r.Strategy,
		&r.Questions, &r.Failures, &r.Warnings, &diag, &r.CreatedBy, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ImportRun{}, ErrImportRunNotFound
		}
		return ImportRun{}, err
	}
	r.Diagnostics = json.RawMessage(diag)
	return r, nil
}
