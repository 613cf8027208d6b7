package fetch

import (
	"fmt"
	"time"

	"repo-browser/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cacheSize bounds how many distinct queries the TTL cache holds.
const cacheSize = 128

// Cache decides whether search results are reused between reads.
type Cache interface {
	Get(query string) ([]models.Repository, bool)
	Set(query string, items []models.Repository)
}

// NoCache always misses, so every read goes to the API.
type NoCache struct{}

func (NoCache) Get(string) ([]models.Repository, bool) { return nil, false }
func (NoCache) Set(string, []models.Repository)        {}

// TTLCache keeps search results in memory until they expire.
type TTLCache struct {
	lru *expirable.LRU[string, []models.Repository]
}

func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		lru: expirable.NewLRU[string, []models.Repository](cacheSize, nil, ttl),
	}
}

func (c *TTLCache) Get(query string) ([]models.Repository, bool) {
	items, ok := c.lru.Get(query)
	if !ok {
		return nil, false
	}
	return append([]models.Repository(nil), items...), true
}

func (c *TTLCache) Set(query string, items []models.Repository) {
	c.lru.Add(query, append([]models.Repository(nil), items...))
}

// NewCache builds the cache for a policy name: "none" (or empty) or "ttl".
func NewCache(policy string, ttl time.Duration) (Cache, error) {
	switch policy {
	case "", "none":
		return NoCache{}, nil
	case "ttl":
		if ttl <= 0 {
			return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
		}
		return NewTTLCache(ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache policy %q", policy)
	}
}
