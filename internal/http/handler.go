package httpapp

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/app"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
)

// WorkReader is the read-only store surface served over HTTP.
type WorkReader interface {
	WorksByISRC(ctx context.Context, isrc string, limit int) ([]domain.UnclaimedWork, error)
	ListWorks(ctx context.Context, afterID int64, limit int) ([]domain.UnclaimedWork, error)
	CountWorks(ctx context.Context) (int64, error)
}

// ArtistAnalyzer runs an analysis for one artist.
type ArtistAnalyzer interface {
	Analyze(ctx context.Context, artistName string) (*app.Analysis, error)
}

type Handler struct {
	Works    WorkReader
	Analyzer ArtistAnalyzer // nil disables /api/analysis
	Logger   *logger.Logger

	// analyses share one API budget, run them one at a time
	analysisMu sync.Mutex
}

func NewHandler(works WorkReader, analyzer ArtistAnalyzer, log *logger.Logger) *Handler {
	return &Handler{
		Works:    works,
		Analyzer: analyzer,
		Logger:   logger.OrDefault(log).WithComponent("http"),
	}
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/works", h.ListWorks)
		r.Get("/works/{isrc}", h.WorksByISRC)
		r.Get("/analysis", h.Analysis)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warn("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}
