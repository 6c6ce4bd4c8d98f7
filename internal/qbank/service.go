// Package qbank imports question-bank documents into the exam store.
//
// A request is flattened by the formats registry, parsed into records, checked
// against the record schema and mapped onto an exam. Every import leaves an
// ImportRun with its diagnostics, even when no question survived.
package qbank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/formats"
	_ "github.com/mind-engage/mindengage-qbank/internal/formats/all"
	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
	syncx "github.com/mind-engage/mindengage-qbank/internal/sync"
)

var ErrNoSource = errors.New("no source document")

// EventSink receives one event per import run. *syncx.EventRepo satisfies it.
type EventSink interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

type Request struct {
	Filename string
	Source   io.Reader

	// Optional separate answer key.
	KeyFilename string
	Key         io.Reader

	Title          string
	DefaultSubject string
	Strategy       parser.Strategy
	CreatedBy      string
}

type Report struct {
	RunID       string             `json:"run_id"`
	ExamID      string             `json:"exam_id,omitempty"`
	BlobKey     string             `json:"blob_key,omitempty"`
	Questions   int                `json:"questions"`
	Diagnostics parser.Diagnostics `json:"diagnostics"`
}

type Service struct {
	store  exam.Store
	blobs  storage.BlobStore // optional
	events EventSink         // optional
	opts   parser.Options
	schema *jsonschema.Schema
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store exam.Store, blobs storage.BlobStore, events EventSink, opts parser.Options, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("qbank: nil exam store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Service{
		store:  store,
		blobs:  blobs,
		events: events,
		opts:   opts,
		schema: schema,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Options returns the parser options requests start from.
func (s *Service) Options() parser.Options { return s.opts }

// Preview parses the request without storing anything.
func (s *Service) Preview(ctx context.Context, req Request) (parser.Result, error) {
	_, res, err := s.parse(ctx, req)
	return res, err
}

// Import parses the request and stores the exam, the import run, the source
// document and an event. A run with no surviving questions creates no exam.
func (s *Service) Import(ctx context.Context, req Request) (Report, error) {
	data, res, err := s.parse(ctx, req)
	if err != nil {
		return Report{}, err
	}
	now := s.now()
	rep := Report{
		RunID:       uuid.NewString(),
		Questions:   len(res.Questions),
		Diagnostics: res.Diagnostics,
	}
	source := filepath.Base(req.Filename)

	if len(res.Questions) > 0 {
		rep.ExamID = uuid.NewString()
		ex := ToExam(rep.ExamID, titleFor(req), source, res.Questions)
		ex.CreatedAt = now.Unix()
		if err := s.store.PutExam(ctx, ex); err != nil {
			return Report{}, fmt.Errorf("store exam: %w", err)
		}
	}

	if s.blobs != nil {
		key := storage.ImportKey(rep.RunID, source)
		if _, err := s.blobs.Put(key, bytes.NewReader(data)); err != nil {
			return Report{}, fmt.Errorf("store source: %w", err)
		}
		rep.BlobKey = key
	}

	diag, err := json.Marshal(res.Diagnostics)
	if err != nil {
		return Report{}, fmt.Errorf("marshal diagnostics: %w", err)
	}
	run := exam.ImportRun{
		ID:          rep.RunID,
		ExamID:      rep.ExamID,
		Source:      source,
		BlobKey:     rep.BlobKey,
		Strategy:    string(res.Diagnostics.Strategy),
		Questions:   len(res.Questions),
		Failures:    len(res.Diagnostics.Failures),
		Warnings:    len(res.Diagnostics.Warnings),
		Diagnostics: diag,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now.Unix(),
	}
	if err := s.store.PutImportRun(ctx, run); err != nil {
		return Report{}, fmt.Errorf("store import run: %w", err)
	}

	if s.events != nil {
		typ := syncx.EventQuestionsImported
		if rep.ExamID == "" {
			typ = syncx.EventImportFailed
		}
		payload := map[string]any{
			"exam_id":   rep.ExamID,
			"source":    source,
			"questions": run.Questions,
			"failures":  run.Failures,
		}
		if err := s.events.Record(ctx, typ, rep.RunID, payload); err != nil {
			s.logger.Warn("event append failed", "run", rep.RunID, "err", err)
		}
	}

	s.logger.Info("import complete",
		"run", rep.RunID,
		"exam", rep.ExamID,
		"source", source,
		"strategy", run.Strategy,
		"questions", run.Questions,
		"failures", run.Failures,
		"warnings", run.Warnings,
	)
	return rep, nil
}

// parse flattens source and key, runs the parser and validates the records.
// It returns the raw source bytes for the blob copy.
func (s *Service) parse(ctx context.Context, req Request) ([]byte, parser.Result, error) {
	if req.Source == nil {
		return nil, parser.Result{}, ErrNoSource
	}
	data, err := io.ReadAll(req.Source)
	if err != nil {
		return nil, parser.Result{}, fmt.Errorf("read source: %w", err)
	}
	text, err := formats.Flatten(ctx, req.Filename, bytes.NewReader(data))
	if err != nil {
		return nil, parser.Result{}, err
	}

	opts := s.opts
	if req.DefaultSubject != "" {
		opts.DefaultSubject = req.DefaultSubject
	}
	if req.Strategy != "" {
		opts.Strategy = req.Strategy
	}

	var res parser.Result
	if req.Key != nil {
		name := req.KeyFilename
		if name == "" {
			name = "key.txt"
		}
		key, err := formats.Flatten(ctx, name, req.Key)
		if err != nil {
			return nil, parser.Result{}, fmt.Errorf("answer key: %w", err)
		}
		res, err = parser.ParseWithKey(text, key, opts)
		if err != nil {
			return nil, parser.Result{}, err
		}
	} else if res, err = parser.Parse(text, opts); err != nil {
		return nil, parser.Result{}, err
	}

	if err := validate(s.schema, res.Questions); err != nil {
		return nil, parser.Result{}, fmt.Errorf("validate records: %w", err)
	}
	s.logger.Debug("parsed source",
		"source", req.Filename,
		"strategy", res.Diagnostics.Strategy,
		"blocks", res.Diagnostics.Blocks,
		"questions", len(res.Questions),
	)
	return data, res, nil
}

func titleFor(req Request) string {
	if t := strings.TrimSpace(req.Title); t != "" {
		return t
	}
	base := filepath.Base(req.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
