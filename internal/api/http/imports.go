package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
)

const maxMemory = 8 << 20

// POST /imports/preview (multipart: file, optional key, default_subject, strategy)
func PreviewHandler(svc *qbank.Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, closeFn, status, err := readImportForm(w, r, maxBytes)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}
		defer closeFn()
		res, err := svc.Preview(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// POST /imports (multipart: file, optional key, title, default_subject, strategy)
func ImportHandler(svc *qbank.Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, closeFn, status, err := readImportForm(w, r, maxBytes)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}
		defer closeFn()
		req.Title = strings.TrimSpace(r.FormValue("title"))
		req.CreatedBy = auth.SubjectFromContext(r.Context())
		rep, err := svc.Import(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		respondJSON(w, http.StatusCreated, rep)
	}
}

// GET /imports/{runID}
func GetImportRunHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := store.GetImportRun(r.Context(), chi.URLParam(r, "runID"))
		if errors.Is(err, exam.ErrImportRunNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, run)
	}
}

func readImportForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (qbank.Request, func(), int, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return qbank.Request{}, nil, http.StatusRequestEntityTooLarge, errors.New("upload too large")
		}
		return qbank.Request{}, nil, http.StatusBadRequest, errors.New("multipart form required")
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return qbank.Request{}, nil, http.StatusBadRequest, errors.New("file required")
	}
	files := []multipart.File{f}
	closeFn := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	strategy, err := parser.ParseStrategy(r.FormValue("strategy"))
	if err != nil {
		closeFn()
		return qbank.Request{}, nil, http.StatusBadRequest, err
	}
	req := qbank.Request{
		Filename:       hdr.Filename,
		Source:         f,
		DefaultSubject: strings.TrimSpace(r.FormValue("default_subject")),
		Strategy:       strategy,
	}
	if kf, khdr, err := r.FormFile("key"); err == nil {
		files = append(files, kf)
		req.Key, req.KeyFilename = kf, khdr.Filename
	} else if key := r.FormValue("key_text"); key != "" {
		req.Key, req.KeyFilename = strings.NewReader(key), "key.txt"
	}
	return req, closeFn, http.StatusOK, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, formats.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, formats.ErrUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrInvalidOptions), errors.Is(err, qbank.ErrNoSource):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
