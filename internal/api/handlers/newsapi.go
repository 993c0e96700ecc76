package handlers

import (
	"net/http"
	"strconv"

	newsservice "coinwatch/internal/services/news"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// NewsHandler proxies article searches to the news upstream
type NewsHandler struct {
	news *newsservice.Service
	log  *logger.Logger
}

// NewNewsHandler creates the news proxy handler
func NewNewsHandler(news *newsservice.Service, log *logger.Logger) *NewsHandler {
	return &NewsHandler{
		news: news,
		log:  log.With("handler", "newsapi"),
	}
}

// Search handles GET /api/newsapi
func (h *NewsHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))

	result, err := h.news.Search(r.Context(), query.Get("q"), page, pageSize)
	if err != nil {
		var upstreamErr *errors.UpstreamError
		if errors.As(err, &upstreamErr) {
			writeError(w, upstreamErr.StatusCode, "Failed to fetch news")
			return
		}

		h.log.Errorf("News search failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
