package blackoutrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/everbloom-studio/booking-api/internal/adapters/postgres"
	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/blackoutrepo"
)

// Repo is a Postgres implementation of blackoutrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) IsBlackout(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blackout_dates
			WHERE tenant_id = $1 AND date = $2
		)
	`, string(tenant), date.Time()).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repo) Create(ctx context.Context, b domain.Blackout) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blackout_dates (id, tenant_id, date, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, string(b.ID), string(b.TenantID), b.Date.Time(), b.Reason, b.CreatedAt.UTC())
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return blackoutrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, tenant domain.TenantID, id domain.BlackoutID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM blackout_dates WHERE id = $1 AND tenant_id = $2
	`, string(id), string(tenant))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return blackoutrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) ListByTenant(ctx context.Context, tenant domain.TenantID) ([]domain.Blackout, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, date, reason, created_at
		FROM blackout_dates
		WHERE tenant_id = $1
		ORDER BY date ASC, id ASC
	`, string(tenant))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Blackout, 0)
	for rows.Next() {
		b, err := scanBlackout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBlackout(row pgx.Row) (domain.Blackout, error) {
	var (
		b         domain.Blackout
		id        string
		tenantID  string
		date      time.Time
		createdAt time.Time
	)
	if err := row.Scan(&id, &tenantID, &date, &b.Reason, &createdAt); err != nil {
		return domain.Blackout{}, err
	}
	b.ID = domain.BlackoutID(id)
	b.TenantID = domain.TenantID(tenantID)
	b.Date = domain.DateOf(date)
	b.CreatedAt = createdAt.UTC()
	return b, nil
}
