package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// ListBookings returns non-cancelled bookings that overlap [start, end).
	ListBookings(ctx context.Context, start, end time.Time) ([]Booking, error)
	// ListUnavailability returns blackout periods that overlap [start, end).
	ListUnavailability(ctx context.Context, start, end time.Time) ([]Unavailability, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) ListBookings(ctx context.Context, start, end time.Time) ([]Booking, error) {
	if !start.Before(end) {
		return nil, ErrInvalidTimeRange
	}

	// Overlap: (start_time < end) AND (end_time > start)
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "resource_id", "instructor_id", "start_time", "end_time").
		From("public.bookings").
		Where(squirrel.NotEq{"status": "cancelled"}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "list bookings failed")
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.ResourceID, &b.InstructorID, &b.Start, &b.End); err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "list bookings failed")
	}

	return bookings, nil
}

func (r *pgxRepository) ListUnavailability(ctx context.Context, start, end time.Time) ([]Unavailability, error) {
	if !start.Before(end) {
		return nil, ErrInvalidTimeRange
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("resource_id", "start_time", "end_time").
		From("public.unavailability").
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list unavailability query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "list unavailability failed")
	}
	defer rows.Close()

	var periods []Unavailability
	for rows.Next() {
		var u Unavailability
		if err := rows.Scan(&u.ResourceID, &u.Start, &u.End); err != nil {
			return nil, fmt.Errorf("scan unavailability failed: %w", err)
		}
		periods = append(periods, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "list unavailability failed")
	}

	return periods, nil
}

// mapPgError turns a missing-table error into ErrSchemaMissing and wraps everything else.
func mapPgError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%s: %w", msg, ErrSchemaMissing)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
