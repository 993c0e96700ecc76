package handlers

import (
	"net/http"
	"net/url"

	"coinwatch/internal/services/marketdata"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// CoinGeckoHandler proxies market data requests to the upstream API.
// The caller names the upstream path in the "endpoint" query parameter
// and every other parameter is forwarded untouched.
type CoinGeckoHandler struct {
	market *marketdata.Service
	log    *logger.Logger
}

// NewCoinGeckoHandler creates the market data proxy handler
func NewCoinGeckoHandler(market *marketdata.Service, log *logger.Logger) *CoinGeckoHandler {
	return &CoinGeckoHandler{
		market: market,
		log:    log.With("handler", "coingecko"),
	}
}

// Proxy handles GET /api/coingecko
func (h *CoinGeckoHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	endpoint := query.Get("endpoint")
	if endpoint == "" {
		writeError(w, http.StatusBadRequest, "Endpoint is required")
		return
	}

	params := url.Values{}
	for key, values := range query {
		if key == "endpoint" {
			continue
		}
		for _, v := range values {
			params.Add(key, v)
		}
	}

	body, err := h.market.Raw(r.Context(), endpoint, params)
	if err != nil {
		var upstreamErr *errors.UpstreamError
		if errors.As(err, &upstreamErr) {
			writeError(w, upstreamErr.StatusCode, "CoinGecko API error: "+upstreamErr.Status)
			return
		}

		h.log.Errorf("CoinGecko proxy failed for %s: %v", endpoint, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch from CoinGecko")
		return
	}

	writeRaw(w, http.StatusOK, body)
}
