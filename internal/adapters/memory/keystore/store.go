package keystore

import (
	"context"
	"sync"
	"time"

	"github.com/everbloom-studio/booking-api/internal/ports/out/keystore"
)

// Store is an in-memory implementation of keystore.Store.
// It is safe for concurrent use: the single mutex makes InsertIfAbsent atomic
// with respect to concurrent callers of the same key.
type Store struct {
	mu sync.Mutex
	m  map[string]keystore.Record
}

func NewStore() *Store {
	return &Store{
		m: make(map[string]keystore.Record),
	}
}

func (s *Store) InsertIfAbsent(ctx context.Context, key string, expiresAt, now time.Time) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.m[key]; ok && now.Before(rec.ExpiresAt) {
		return false, nil
	}
	// Absent, or expired and reclaimed.
	s.m[key] = keystore.Record{
		Key:       key,
		Response:  nil,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	return true, nil
}

func (s *Store) Find(ctx context.Context, key string) (keystore.Record, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[key]
	if !ok {
		return keystore.Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (s *Store) Update(ctx context.Context, key string, response []byte) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[key]
	if !ok {
		return keystore.ErrNotFound
	}
	rec.Response = append([]byte(nil), response...)
	s.m[key] = rec
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func cloneRecord(rec keystore.Record) keystore.Record {
	cp := rec
	if rec.Response != nil {
		cp.Response = append([]byte(nil), rec.Response...)
	}
	return cp
}
