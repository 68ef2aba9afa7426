package bookingrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/everbloom-studio/booking-api/internal/adapters/postgres"
	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/bookingrepo"
)

// Repo is a Postgres implementation of bookingrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) HasBookingOn(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE tenant_id = $1 AND event_date = $2 AND status <> $3
		)
	`, string(tenant), date.Time(), string(domain.BookingStatusCanceled)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repo) Create(ctx context.Context, b domain.Booking) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookings (
			id, tenant_id, package_id,
			customer_name, customer_email, event_date,
			status, amount_cents, currency,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		string(b.ID), string(b.TenantID), string(b.PackageID),
		b.CustomerName, b.CustomerEmail, b.EventDate.Time(),
		string(b.Status), b.AmountCents, b.Currency,
		b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return bookingrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, tenant domain.TenantID, id domain.BookingID) (domain.Booking, error) {
	if r.pool == nil {
		return domain.Booking{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, selectBookingColumns+`
		WHERE id = $1 AND tenant_id = $2
	`, string(id), string(tenant))
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, bookingrepo.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *Repo) ListByEventDate(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) ([]domain.Booking, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectBookingColumns+`
		WHERE tenant_id = $1 AND event_date = $2
		ORDER BY created_at ASC, id ASC
	`, string(tenant), date.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const selectBookingColumns = `
	SELECT id, tenant_id, package_id,
	       customer_name, customer_email, event_date,
	       status, amount_cents, currency,
	       created_at, updated_at
	FROM bookings
`

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var (
		b         domain.Booking
		id        string
		tenantID  string
		packageID string
		eventDate time.Time
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(
		&id, &tenantID, &packageID,
		&b.CustomerName, &b.CustomerEmail, &eventDate,
		&status, &b.AmountCents, &b.Currency,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	b.ID = domain.BookingID(id)
	b.TenantID = domain.TenantID(tenantID)
	b.PackageID = domain.PackageID(packageID)
	b.EventDate = domain.DateOf(eventDate)
	b.Status = domain.BookingStatus(status)
	b.CreatedAt = createdAt.UTC()
	b.UpdatedAt = updatedAt.UTC()
	return b, nil
}
