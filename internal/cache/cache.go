package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a key/value store with per-entry expiry. A read after the
// entry's TTL has elapsed is a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// SearchKey derives a deterministic cache key from a search query and
// result limit.
func SearchKey(query string, limit int) string {
	return fmt.Sprintf("yt-search:%s:%d", strings.ToLower(strings.TrimSpace(query)), limit)
}
