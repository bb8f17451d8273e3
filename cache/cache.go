// Package cache is the injected TTL key/value store for ephemeral state.
// Components that need short-lived counters or cached snapshots take a
// *Store instead of reaching into process globals.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Store struct {
	c *gocache.Cache
}

func New(defaultTTL, cleanupInterval time.Duration) *Store {
	return &Store{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (s *Store) Get(key string) (any, bool) {
	return s.c.Get(key)
}

func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.c.Set(key, value, ttl)
}

func (s *Store) Delete(key string) {
	s.c.Delete(key)
}
