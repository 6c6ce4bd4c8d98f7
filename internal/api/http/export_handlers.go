package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/qbank/sqlgen"
	"github.com/mind-engage/mindengage-qbank/internal/qti/export"
)

// GET /exams/{examID}/export?format=qti|sql
func ExportHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		format := strings.ToLower(r.URL.Query().Get("format"))
		if format == "" {
			format = "qti"
		}

		ex, err := store.GetExamAdmin(r.Context(), id)
		if errors.Is(err, exam.ErrExamNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		var (
			body        []byte
			name, ctype string
		)
		switch format {
		case "qti":
			if body, err = export.BuildPackage(ex); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			name, ctype = id+".zip", "application/zip"
		case "sql":
			var buf bytes.Buffer
			opts := sqlgen.Options{
				Table:          r.URL.Query().Get("table"),
				WithDifficulty: r.URL.Query().Get("difficulty") == "1",
				GeneratedAt:    time.Now(),
			}
			if err := sqlgen.Write(&buf, qbank.FromExam(ex), opts); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			body, name, ctype = buf.Bytes(), id+".sql", "application/sql; charset=utf-8"
		default:
			http.Error(w, "unknown format", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", ctype)
		w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
		http.ServeContent(w, r, name, time.Unix(ex.CreatedAt, 0), bytes.NewReader(body))
	}
}
