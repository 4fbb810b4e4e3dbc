package httpapp

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/catalog"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/report"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	n, err := h.Works.CountWorks(r.Context())
	if err != nil {
		h.Logger.Error("health check failed", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "works": n})
}

func (h *Handler) WorksByISRC(w http.ResponseWriter, r *http.Request) {
	isrc := chi.URLParam(r, "isrc")
	works, err := h.Works.WorksByISRC(r.Context(), isrc, constants.MaxLookupRows)
	if err != nil {
		h.Logger.Error("works lookup failed", "isrc", isrc, "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(works) == 0 {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("no unclaimed works for ISRC %s", isrc))
		return
	}
	h.writeJSON(w, http.StatusOK, works)
}

type worksPage struct {
	Works       []domain.UnclaimedWork `json:"works"`
	NextAfterID int64                  `json:"next_after_id,omitempty"`
}

// ListWorks pages through the store by id: ?after_id=N&limit=M.
func (h *Handler) ListWorks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var afterID int64
	if v := q.Get("after_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "after_id must be a non-negative integer")
			return
		}
		afterID = n
	}
	limit := constants.MaxLookupRows
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	works, err := h.Works.ListWorks(r.Context(), afterID, limit)
	if err != nil {
		h.Logger.Error("works listing failed", "after_id", afterID, "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	page := worksPage{Works: works}
	if len(works) == limit {
		page.NextAfterID = works[len(works)-1].ID
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	if h.Analyzer == nil {
		h.writeError(w, http.StatusServiceUnavailable, "catalog API credentials are not configured")
		return
	}
	artist := strings.TrimSpace(r.URL.Query().Get("artist"))
	if artist == "" {
		h.writeError(w, http.StatusBadRequest, "artist is required")
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "xlsx" {
		h.writeError(w, http.StatusBadRequest, "format must be json or xlsx")
		return
	}

	h.analysisMu.Lock()
	res, err := h.Analyzer.Analyze(r.Context(), artist)
	h.analysisMu.Unlock()

	if errors.Is(err, catalog.ErrArtistNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.Logger.Error("analysis failed", "artist", artist, "error", err)
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if format != "xlsx" {
		h.writeJSON(w, http.StatusOK, res)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, res.Catalog.Tracks, res.Matches, res.Summary); err != nil {
		h.Logger.Error("report rendering failed", "artist", artist, "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", constants.MimeTypeXLSX)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": report.FileName(res.Catalog.Artist.Name),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
