// Package memstore keeps KV entries in process memory.
package memstore

import (
	"context"

	"github.com/patrickmn/go-cache"
)

type Store struct {
	c *cache.Cache
}

func New() *Store {
	return &Store{c: cache.New(cache.NoExpiration, 0)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", false, nil
	}
	str, ok := v.(string)
	if !ok {
		return "", false, nil
	}
	return str, true, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.c.Set(key, value, cache.NoExpiration)
	return nil
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.c.Delete(key)
}
