package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/randomdance/api/internal/cache"
	"github.com/randomdance/api/internal/client"
	"github.com/randomdance/api/internal/model"
)

// DefaultSearchLimit is used when the caller does not request a limit.
const DefaultSearchLimit = 10

// MediaService fronts the media info provider, caching search results so
// repeated identical queries within the TTL never hit the provider.
type MediaService struct {
	provider  client.MediaInfoProvider
	cache     cache.Cache
	searchTTL time.Duration
	logger    zerolog.Logger
}

func NewMediaService(provider client.MediaInfoProvider, c cache.Cache, searchTTL time.Duration, logger zerolog.Logger) *MediaService {
	return &MediaService{
		provider:  provider,
		cache:     c,
		searchTTL: searchTTL,
		logger:    logger,
	}
}

// Info fetches metadata for a single video reference. Lookups are not
// cached; callers poll them rarely and expect fresh durations.
func (s *MediaService) Info(ctx context.Context, url string) (*model.VideoInfo, error) {
	if url == "" {
		return nil, &ValidationError{Reason: "url is required"}
	}
	return s.provider.FetchInfo(ctx, url)
}

// Search returns candidate sources for a free-text query, serving from
// the cache when possible.
func (s *MediaService) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	if query == "" {
		return nil, &ValidationError{Reason: "query is required"}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	key := cache.SearchKey(query, limit)
	if data, ok := s.cache.Get(ctx, key); ok {
		var results []model.SearchResult
		if err := json.Unmarshal(data, &results); err == nil {
			s.logger.Debug().Str("query", query).Msg("search cache hit")
			return results, nil
		}
		// Corrupt entry: drop it and fall through to the provider
		s.cache.Delete(ctx, key)
	}

	results, err := s.provider.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		s.cache.Set(ctx, key, data, s.searchTTL)
	}
	return results, nil
}
