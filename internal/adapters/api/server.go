// Package api is the development content backend: the REST surface the
// dashboard consumes, served from SQLite.
//
// Reads are public. Mutations need "Authorization: Bearer <token>" with a token
// issued by POST /users/login; phases, potentials and matrix categories further
// need the admin role. Every error body is {"message": "..."}.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"factoryplan/internal/adapters/http/middleware"
	"factoryplan/internal/adapters/http/perf"
	"factoryplan/internal/adapters/storage"
	matrixStore "factoryplan/internal/adapters/storage/matrix"
	phaseStore "factoryplan/internal/adapters/storage/phase"
	potentialStore "factoryplan/internal/adapters/storage/potential"
	profileStore "factoryplan/internal/adapters/storage/profile"
	userStore "factoryplan/internal/adapters/storage/user"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

// Stores holds the storage dependencies of the backend.
type Stores struct {
	Phases     phaseStore.Store
	Potentials potentialStore.Store
	Profiles   profileStore.Store
	Matrix     matrixStore.Store
	Users      userStore.Store
}

// Server serves the content REST API.
type Server struct {
	stores    Stores
	collector *perf.Collector
	now       func() time.Time
	newToken  func() string
}

// New creates a server over stores. collector may be nil.
func New(stores Stores, collector *perf.Collector) *Server {
	return &Server{
		stores:    stores,
		collector: collector,
		now:       time.Now,
		newToken:  uuid.NewString,
	}
}

// Handler returns the routed, timed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return middleware.Chain(mux, middleware.Timing(s.collector, middleware.DefaultSlowRequest))
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /users/login", s.handleLogin)

	mux.HandleFunc("GET /phases", s.handleListPhases)
	mux.HandleFunc("GET /phases/{id}", s.handleGetPhase)
	mux.HandleFunc("POST /phases", s.admin(s.handleCreatePhase))
	mux.HandleFunc("PATCH /phases/{id}", s.admin(s.handleUpdatePhase))
	mux.HandleFunc("DELETE /phases/{id}", s.admin(s.handleDeletePhase))

	mux.HandleFunc("GET /phases/{id}/subphases", s.handleListSubphases)
	mux.HandleFunc("POST /phases/{id}/subphases", s.editor(s.handleCreateSubphase))
	mux.HandleFunc("PATCH /phases/{id}/subphases/{sid}", s.editor(s.handleUpdateSubphase))
	mux.HandleFunc("DELETE /phases/{id}/subphases/{sid}", s.editor(s.handleDeleteSubphase))

	mux.HandleFunc("GET /potential/top-rated/all", s.handleTopRated)
	mux.HandleFunc("GET /potential/{phaseId}", s.handleListPotentials)
	mux.HandleFunc("POST /potential", s.admin(s.handleCreatePotential))
	mux.HandleFunc("PATCH /potential/{id}", s.admin(s.handleUpdatePotential))
	mux.HandleFunc("DELETE /potential/{id}", s.admin(s.handleDeletePotential))
	mux.HandleFunc("PATCH /potential/{id}/rating", s.admin(s.handleRatePotential))

	mux.HandleFunc("GET /profile/{id}", s.handleGetProfile)
	mux.HandleFunc("PATCH /profile/{id}/section/{sid}", s.editor(s.handleUpdateProfileSection))
	mux.HandleFunc("GET /product-development-sections", s.handleListProductSections)
	mux.HandleFunc("PATCH /product-development-sections/{id}", s.editor(s.handleUpdateProductSection))

	mux.HandleFunc("GET /matrix/phase/{id}", s.handleMatrixForPhase)
	mux.HandleFunc("GET /matrix/category-titles/{id}", s.handleCategoryTitles)
	mux.HandleFunc("POST /matrix/categories", s.admin(s.handleCreateCategory))
	mux.HandleFunc("PATCH /matrix/categories/{id}", s.admin(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /matrix/categories/{id}", s.admin(s.handleDeleteCategory))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("api_encode_failed", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

// storeError maps storage failures onto status codes.
func storeError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, storage.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer path value, answering 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
