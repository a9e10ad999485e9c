package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const bannerPrefix = "banner:"

// BannerCacheRepo caches rendered banners under a content-derived key, so
// identical (font, text) pairs always hit the same entry.
type BannerCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewBannerCacheRepo(client *goredis.Client, ttl time.Duration) *BannerCacheRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BannerCacheRepo{client: client, ttl: ttl}
}

func bannerKey(font, text string) string {
	sum := sha256.Sum256([]byte(font + "|" + text))
	return bannerPrefix + hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached banner and whether it was present.
func (r *BannerCacheRepo) Get(ctx context.Context, font, text string) (string, bool, error) {
	if r.client == nil {
		return "", false, fmt.Errorf("redis client is nil")
	}
	if text == "" {
		return "", false, fmt.Errorf("cache text is required")
	}

	value, err := r.client.Get(ctx, bannerKey(font, text)).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get banner cache entry: %w", err)
	}

	return value, true, nil
}

func (r *BannerCacheRepo) Set(ctx context.Context, font, text, banner string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if text == "" || banner == "" {
		return fmt.Errorf("invalid banner cache payload")
	}

	if err := r.client.Set(ctx, bannerKey(font, text), banner, r.ttl).Err(); err != nil {
		return fmt.Errorf("set banner cache entry: %w", err)
	}

	return nil
}
