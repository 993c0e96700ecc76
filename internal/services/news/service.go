package news

import (
	"context"
	"strings"
	"time"

	"coinwatch/internal/domain/news"
	"coinwatch/internal/metrics"
	"coinwatch/pkg/logger"
)

const (
	defaultQuery    = "crypto"
	defaultPage     = 1
	defaultPageSize = 12
	maxPageSize     = 100
)

// Fetcher retrieves one page of articles from the news upstream
type Fetcher interface {
	Everything(ctx context.Context, query string, page, pageSize int) (*news.Page, error)
}

// Service serves news searches. Unlike market data, articles are always
// fetched fresh so readers never see a stale page.
type Service struct {
	fetcher Fetcher
	log     *logger.Logger
}

// NewService creates a new news service
func NewService(fetcher Fetcher, log *logger.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		log:     log.With("service", "news"),
	}
}

// Search fetches articles for a query with paging defaults applied:
// blank query means the general crypto feed, page numbers start at 1
// and page size is clamped to the upstream maximum.
func (s *Service) Search(ctx context.Context, query string, page, pageSize int) (*news.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = defaultQuery
	}
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	start := time.Now()
	result, err := s.fetcher.Everything(ctx, query, page, pageSize)
	metrics.RecordUpstreamCall("newsapi", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return result, nil
}
