package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinwatch/internal/domain/news"
	newsservice "coinwatch/internal/services/news"
	"coinwatch/pkg/errors"
)

type stubFetcher struct {
	page     *news.Page
	err      error
	lastQ    string
	lastPage int
	lastSize int
}

func (f *stubFetcher) Everything(ctx context.Context, query string, page, pageSize int) (*news.Page, error) {
	f.lastQ = query
	f.lastPage = page
	f.lastSize = pageSize
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func newNewsHandler(fetcher *stubFetcher) *NewsHandler {
	return NewNewsHandler(newsservice.NewService(fetcher, testLogger()), testLogger())
}

func TestNewsHandler_Envelope(t *testing.T) {
	articles := make([]news.Article, 8)
	for i := range articles {
		articles[i] = news.Article{Title: "headline"}
	}
	fetcher := &stubFetcher{page: &news.Page{
		Articles:     articles,
		TotalResults: 20,
		Page:         2,
		PageSize:     5,
	}}
	h := newNewsHandler(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/newsapi?q=ethereum&page=2&pageSize=5", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ethereum", fetcher.lastQ)
	assert.Equal(t, 2, fetcher.lastPage)
	assert.Equal(t, 5, fetcher.lastSize)

	var page news.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Articles, 8)
	assert.Equal(t, 20, page.TotalResults)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.PageSize)
}

func TestNewsHandler_Defaults(t *testing.T) {
	fetcher := &stubFetcher{page: &news.Page{Articles: []news.Article{}, Page: 1, PageSize: 12}}
	h := newNewsHandler(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/newsapi", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "crypto", fetcher.lastQ)
	assert.Equal(t, 1, fetcher.lastPage)
	assert.Equal(t, 12, fetcher.lastSize)
}

func TestNewsHandler_UpstreamError(t *testing.T) {
	fetcher := &stubFetcher{err: &errors.UpstreamError{StatusCode: http.StatusTooManyRequests, Status: "429 Too Many Requests"}}
	h := newNewsHandler(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/newsapi?q=bitcoin", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch news"}`, rec.Body.String())
}

func TestNewsHandler_TransportFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.Wrap(errors.ErrUpstreamUnavailable, "connection refused")}
	h := newNewsHandler(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/newsapi?q=bitcoin", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestNewsHandler_MethodNotAllowed(t *testing.T) {
	h := newNewsHandler(&stubFetcher{page: &news.Page{}})

	req := httptest.NewRequest(http.MethodPost, "/api/newsapi", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
