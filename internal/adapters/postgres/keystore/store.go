package keystore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/everbloom-studio/booking-api/internal/ports/out/keystore"
)

// Store is a Postgres implementation of keystore.Store.
//
// Atomicity of InsertIfAbsent comes from the primary key on
// idempotency_keys.key: the insert either lands, reclaims an expired row, or
// conflicts with a live one, all inside a single statement, so concurrent
// callers with the same key cannot both win.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InsertIfAbsent(ctx context.Context, key string, expiresAt, now time.Time) (bool, error) {
	if s.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, response, expires_at, created_at)
		VALUES ($1, NULL, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET response = NULL,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
		WHERE idempotency_keys.expires_at <= $3
	`, key, expiresAt.UTC(), now.UTC())
	if err != nil {
		return false, err
	}
	// 1 row: fresh insert or expired-row reclaim. 0 rows: a live record won.
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Find(ctx context.Context, key string) (keystore.Record, bool, error) {
	if s.pool == nil {
		return keystore.Record{}, false, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT key, response, expires_at, created_at
		FROM idempotency_keys
		WHERE key = $1
	`, key)
	var rec keystore.Record
	if err := row.Scan(&rec.Key, &rec.Response, &rec.ExpiresAt, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return keystore.Record{}, false, nil
		}
		return keystore.Record{}, false, err
	}
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Update(ctx context.Context, key string, response []byte) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE idempotency_keys
		SET response = $2
		WHERE key = $1
	`, key, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return keystore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key)
	return err
}
