package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/snnyvrz/locallibrary/internal/repository"
)

const (
	CacheKey   = "stats:catalog"
	DefaultTTL = 30 * time.Second
)

type Service struct {
	counts repository.CountRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewService returns a Service. A nil cache computes the counters on every call.
func NewService(counts repository.CountRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{counts: counts, cache: cache, ttl: ttl, logger: logger}
}

// Counts returns the catalog counters. Cache failures are logged and the
// counters are read from the database instead.
func (s *Service) Counts(ctx context.Context) (repository.CatalogCounts, error) {
	if s.cache != nil {
		if c, ok := s.cached(ctx); ok {
			return c, nil
		}
	}

	c, err := s.counts.Counts(ctx)
	if err != nil {
		return repository.CatalogCounts{}, fmt.Errorf("catalog counts: %w", err)
	}

	if s.cache != nil {
		raw, err := json.Marshal(c)
		if err == nil {
			err = s.cache.Set(ctx, CacheKey, string(raw), s.ttl)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("key", CacheKey).Msg("failed to cache catalog counts")
		}
	}

	return c, nil
}

func (s *Service) cached(ctx context.Context) (repository.CatalogCounts, bool) {
	raw, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", CacheKey).Msg("stats cache unavailable")
		}
		return repository.CatalogCounts{}, false
	}

	var c repository.CatalogCounts
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.logger.Warn().Err(err).Str("key", CacheKey).Msg("dropping malformed cached counts")
		_ = s.cache.Delete(ctx, CacheKey)
		return repository.CatalogCounts{}, false
	}
	return c, true
}
