package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
)

// GET /imports/{runID}/source returns the document an import run was made from.
func SourceHandler(store exam.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := store.GetImportRun(r.Context(), chi.URLParam(r, "runID"))
		if errors.Is(err, exam.ErrImportRunNotFound) || (err == nil && run.BlobKey == "") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		rc, err := bs.Get(run.BlobKey)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		ctype := mime.TypeByExtension(path.Ext(run.BlobKey))
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ctype)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": run.Source}))
		_, _ = io.Copy(w, rc)
	}
}
