package http

import (
	"net/http"

	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
)

// GET /subjects
func SubjectsHandler(tax *parser.Taxonomy) http.HandlerFunc {
	if tax == nil {
		tax = parser.DefaultTaxonomy()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, tax)
	}
}
