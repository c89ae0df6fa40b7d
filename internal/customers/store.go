package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists customers in Postgres.
type Store struct {
	pool PgxPool
}

// NewStore creates a customer store backed by pgx.
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("customers: pgx pool required")
	}
	return &Store{pool: pool}
}

const customerColumns = `id, name, phone, COALESCE(email, ''), COALESCE(preferred_stylist, ''), COALESCE(notes, ''), created_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.PreferredStylist, &c.Notes, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByPhone returns the customer for a phone number, or ErrNotFound.
func (s *Store) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`
	c, err := scanCustomer(s.pool.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("customers: select by phone: %w", err)
	}
	return c, nil
}

// FindOrCreate looks up a customer by phone and inserts one when absent.
// The insert is keyed ON CONFLICT (phone) DO NOTHING so two concurrent
// invocations for an unseen phone still converge on a single row; the loser
// of the race simply re-reads the winner's insert.
func (s *Store) FindOrCreate(ctx context.Context, phone, name string) (*Customer, error) {
	if c, err := s.FindByPhone(ctx, phone); err == nil {
		return c, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if name == "" {
		name = "New Customer"
	}
	query := `
		INSERT INTO customers (id, name, phone, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (phone) DO NOTHING
		RETURNING ` + customerColumns
	c, err := scanCustomer(s.pool.QueryRow(ctx, query, uuid.New(), name, phone))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customers: insert: %w", err)
	}
	// Lost the race: the row exists now.
	return s.FindByPhone(ctx, phone)
}

// UpdateFields applies a sparse patch to the customer with the given phone.
// It returns the column names written. An empty patch is rejected with
// ErrNothingToUpdate so the agent can say "nothing to update" instead of
// silently succeeding.
func (s *Store) UpdateFields(ctx context.Context, phone string, patch FieldPatch) ([]string, error) {
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}

	c, err := s.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	var (
		sets   []string
		values []any
		cols   []string
	)
	add := func(col, val string) {
		if val == "" {
			return
		}
		values = append(values, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(values)))
		cols = append(cols, col)
	}
	add("name", patch.Name)
	add("email", patch.Email)
	add("preferred_stylist", patch.PreferredStylist)
	add("notes", patch.Notes)

	values = append(values, c.ID)
	query := fmt.Sprintf(
		"UPDATE customers SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(values),
	)
	if _, err := s.pool.Exec(ctx, query, values...); err != nil {
		return nil, fmt.Errorf("customers: update fields: %w", err)
	}
	return cols, nil
}

// CompletedVisitStats sums completed visits and spend for a customer.
func (s *Store) CompletedVisitStats(ctx context.Context, customerID string) (VisitStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(price), 0)
		FROM appointments
		WHERE customer_id = $1 AND status = 'completed'
	`
	var stats VisitStats
	if err := s.pool.QueryRow(ctx, query, customerID).Scan(&stats.TotalVisits, &stats.TotalSpent); err != nil {
		return VisitStats{}, fmt.Errorf("customers: visit stats: %w", err)
	}
	return stats, nil
}

// LastVisit returns the customer's most recent appointment time, zero when
// they have never visited.
func (s *Store) LastVisit(ctx context.Context, customerID string) (time.Time, error) {
	query := `SELECT MAX(appointment_time) FROM appointments WHERE customer_id = $1`
	var last *time.Time
	if err := s.pool.QueryRow(ctx, query, customerID).Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("customers: last visit: %w", err)
	}
	if last == nil {
		return time.Time{}, nil
	}
	return *last, nil
}

// TopServices returns the customer's most frequently booked services.
func (s *Store) TopServices(ctx context.Context, customerID string, limit int) ([]ServiceCount, error) {
	query := `
		SELECT service, COUNT(*) AS bookings
		FROM appointments
		WHERE customer_id = $1
		GROUP BY service
		ORDER BY bookings DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("customers: top services: %w", err)
	}
	defer rows.Close()

	var out []ServiceCount
	for rows.Next() {
		var sc ServiceCount
		if err := rows.Scan(&sc.Service, &sc.Count); err != nil {
			return nil, fmt.Errorf("customers: scan top services: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
