package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/rbac"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
)

type Deps struct {
	Auth        *auth.AuthService
	Login       auth.LoginConfig
	EnableLogin bool
	Store       exam.Store
	Blobs       storage.BlobStore // optional
	Importer    *qbank.Service
	Events      EventFeed // optional
	MaxUpload   int64
}

// Mount registers the public and protected routes on r.
func Mount(r chi.Router, d Deps) {
	if d.EnableLogin {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Login))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.With(rbac.Require(rbac.PermPreview)).
			Post("/imports/preview", PreviewHandler(d.Importer, d.MaxUpload))
		pr.With(rbac.Require(rbac.PermImport)).
			Post("/imports", ImportHandler(d.Importer, d.MaxUpload))
		pr.With(rbac.Require(rbac.PermImportsView)).
			Get("/imports/{runID}", GetImportRunHandler(d.Store))
		if d.Blobs != nil {
			pr.With(rbac.Require(rbac.PermImportsView)).
				Get("/imports/{runID}/source", SourceHandler(d.Store, d.Blobs))
		}

		if d.Events != nil {
			pr.With(rbac.Require(rbac.PermImportsView)).
				Get("/events", EventsHandler(d.Events))
		}

		pr.With(rbac.Require(rbac.PermExamView)).
			Get("/exams", ListExamsHandler(d.Store))
		pr.With(rbac.Require(rbac.PermExamView)).
			Get("/exams/{examID}", GetExamHandler(d.Store))
		pr.With(rbac.Require(rbac.PermExamExport)).
			Get("/exams/{examID}/export", ExportHandler(d.Store))

		pr.With(rbac.Require(rbac.PermSubjectsView)).
			Get("/subjects", SubjectsHandler(d.Importer.Options().Taxonomy))
	})
}
