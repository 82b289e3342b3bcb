// Package cache stores remote price lookups so repeated searches for the
// same part do not hit the AI provider again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

const keyPrefix = "cotizador:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// LookupKey derives the cache key of a query. Queries differing only in
// case or surrounding whitespace share a key.
func LookupKey(q model.SearchQuery) string {
	hash := sha256.Sum256([]byte(q.Key()))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: memory only when Dir is empty,
// memory over disk otherwise. Returns nil when caching is disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// LookupStore keeps decoded lookup responses in a Cache
type LookupStore struct {
	cache Cache
	ttl   time.Duration
}

// NewLookupStore wraps c. A nil c gives a store that never hits.
func NewLookupStore(c Cache, ttl time.Duration) *LookupStore {
	return &LookupStore{cache: c, ttl: ttl}
}

// Get returns the cached response for q
func (s *LookupStore) Get(q model.SearchQuery) (*model.LookupResponse, bool) {
	if s == nil || s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(LookupKey(q))
	if !ok {
		return nil, false
	}

	var resp model.LookupResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		_ = s.cache.Delete(LookupKey(q))
		return nil, false
	}
	return &resp, true
}

// Put stores resp for q. Fallback (mock) responses are never stored.
func (s *LookupStore) Put(q model.SearchQuery, resp *model.LookupResponse) error {
	if s == nil || s.cache == nil || resp == nil || resp.Fallback {
		return nil
	}

	stored := *resp
	stored.Cached = false
	stored.Warnings = nil

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal lookup: %w", err)
	}
	return s.cache.Set(LookupKey(q), data, s.ttl)
}
