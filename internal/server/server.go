// Package server exposes the resolution core over HTTP: duplicate
// scanning, merging, batch and snapshot import, and snapshot export.
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/orbitnotes/orbit-cli/internal/config"
	"github.com/orbitnotes/orbit-cli/internal/contact"
	"github.com/orbitnotes/orbit-cli/internal/identity"
	"github.com/orbitnotes/orbit-cli/internal/importer"
	"github.com/orbitnotes/orbit-cli/internal/model"
	"github.com/orbitnotes/orbit-cli/internal/snapshot"
	"github.com/orbitnotes/orbit-cli/internal/store"
)

// Server handles HTTP requests against one owner's corpus.
type Server struct {
	store        store.Store
	merger       *contact.Merger
	ownerID      string
	maxBatchSize int
}

// New creates a Server.
func New(st store.Store, merger *contact.Merger, ownerID string, maxBatchSize int) *Server {
	return &Server{store: st, merger: merger, ownerID: ownerID, maxBatchSize: maxBatchSize}
}

// Router builds the chi router with recovery, CORS, and rate limiting.
func (s *Server) Router(cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))

	r.Get("/health", s.handleHealth)
	r.Get("/duplicates", s.handleDuplicates)
	r.Post("/merge", s.handleMerge)
	r.Post("/import/batch", s.handleImportBatch)
	r.Post("/import/snapshot", s.handleImportSnapshot)
	r.Get("/export/snapshot", s.handleExportSnapshot)

	return r
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts(r.Context(), s.ownerID)
	if err != nil {
		zap.L().Error("server: list contacts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list contacts failed")
		return
	}

	groups := identity.FindDuplicates(contacts)
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
		"count":  len(groups),
	})
}

type mergeRequest struct {
	WinnerID  string            `json:"winnerId"`
	LoserID   string            `json:"loserId"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WinnerID == "" || req.LoserID == "" {
		writeError(w, http.StatusBadRequest, "winnerId and loserId are required")
		return
	}

	merged, err := s.merger.Merge(r.Context(), req.WinnerID, req.LoserID, req.Overrides)
	if err != nil {
		zap.L().Error("server: merge failed",
			zap.String("winner_id", req.WinnerID),
			zap.String("loser_id", req.LoserID),
			zap.Error(err),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, merged)
}

type importBatchRequest struct {
	Contacts []model.ParsedContact `json:"contacts"`
}

func (s *Server) handleImportBatch(w http.ResponseWriter, r *http.Request) {
	var req importBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Contacts) == 0 {
		writeError(w, http.StatusBadRequest, "contacts is required")
		return
	}
	if s.maxBatchSize > 0 && len(req.Contacts) > s.maxBatchSize {
		writeError(w, http.StatusRequestEntityTooLarge, "batch exceeds the configured maximum")
		return
	}

	summary, _, err := importer.Run(r.Context(), s.store, s.ownerID, req.Contacts)
	if err != nil {
		zap.L().Error("server: batch import failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body failed")
		return
	}

	res, err := snapshot.Import(r.Context(), s.store, s.ownerID, data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	doc, err := snapshot.Export(r.Context(), s.store, s.ownerID)
	if err != nil {
		zap.L().Error("server: export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
