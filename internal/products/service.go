package products

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	searchCacheScope = "product_search"
	maxQueryLength   = 100
)

type productRepository interface {
	SearchByName(ctx context.Context, term string, limit int) ([]models.Product, error)
}

type searchCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(scope string, parts ...string) string
}

// Service serves the storefront product search.
type Service interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// ServiceParams groups dependencies for the product service. Cache is optional.
type ServiceParams struct {
	Repo     productRepository
	Cache    searchCache
	Logger   *logger.Logger
	Limit    int
	CacheTTL time.Duration
}

type service struct {
	repo  productRepository
	cache searchCache
	logg  *logger.Logger
	limit int
	ttl   time.Duration
}

// NewService builds a product search service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("product repository required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &service{
		repo:  params.Repo,
		cache: params.Cache,
		logg:  params.Logger,
		limit: pagination.Search.Normalize(params.Limit),
		ttl:   params.CacheTTL,
	}, nil
}

// SanitizeQuery trims, collapses inner whitespace and caps the length.
func SanitizeQuery(raw string) string {
	q := strings.Join(strings.Fields(raw), " ")
	if r := []rune(q); len(r) > maxQueryLength {
		q = strings.TrimSpace(string(r[:maxQueryLength]))
	}
	return q
}

func (s *service) Search(ctx context.Context, query string) (*SearchResult, error) {
	q := SanitizeQuery(query)
	if q == "" {
		return &SearchResult{Query: q, Groups: []CategoryGroup{}}, nil
	}

	key := ""
	if s.cache != nil && s.ttl > 0 {
		key = s.cache.CacheKey(searchCacheScope, strings.ToLower(q))
		if cached, ok := s.readCache(ctx, key); ok {
			return cached, nil
		}
	}

	rows, err := s.repo.SearchByName(ctx, q, s.limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	result := &SearchResult{Query: q, Groups: groupByCategory(rows)}

	if key != "" {
		s.writeCache(ctx, key, result)
	}
	return result, nil
}

func (s *service) readCache(ctx context.Context, key string) (*SearchResult, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "product search cache read failed: "+err.Error())
		}
		return nil, false
	}
	var result SearchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "discarding undecodable product search cache entry")
		return nil, false
	}
	return &result, true
}

func (s *service) writeCache(ctx context.Context, key string, result *SearchResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "product search cache write failed: "+err.Error())
	}
}
