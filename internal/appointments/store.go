package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

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

// Store persists appointments in Postgres. It is the only writer of
// appointment rows; the availability engine and customer directory read
// through it but never mutate.
type Store struct {
	pool PgxPool
}

// NewStore creates an appointment store backed by pgx.
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Store{pool: pool}
}

// Insert writes a new appointment row.
func (s *Store) Insert(ctx context.Context, a *Appointment) error {
	query := `
		INSERT INTO appointments (appointment_id, customer_id, service, stylist, appointment_time, status, price, notes, source)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		a.AppointmentID,
		a.CustomerID,
		a.Service,
		a.Stylist,
		a.AppointmentTime,
		a.Status,
		a.Price,
		a.Notes,
		a.Source,
	)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// CancelMatching flips matching scheduled/confirmed rows to cancelled and
// reports how many were changed. Filters are AND-combined; at least one
// must be present or nothing is touched.
func (s *Store) CancelMatching(ctx context.Context, appointmentID, customerPhone string) (int64, error) {
	if appointmentID == "" && customerPhone == "" {
		return 0, nil
	}

	query := `
		UPDATE appointments
		SET status = 'cancelled', updated_at = NOW()
		WHERE status IN ('scheduled', 'confirmed')
	`
	var args []any
	if appointmentID != "" {
		args = append(args, appointmentID)
		query += fmt.Sprintf(" AND appointment_id = $%d", len(args))
	}
	if customerPhone != "" {
		args = append(args, customerPhone)
		query += fmt.Sprintf(" AND customer_id IN (SELECT id FROM customers WHERE phone = $%d)", len(args))
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("appointments: cancel: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FindDetails returns up to five newest appointments matching the filter,
// joined with customer name and phone.
func (s *Store) FindDetails(ctx context.Context, filter DetailFilter) ([]Detail, error) {
	query := `
		SELECT a.appointment_id, COALESCE(a.customer_id::text, ''), a.service, a.stylist,
		       a.appointment_time, a.status, a.price, COALESCE(a.notes, ''), COALESCE(a.source, ''),
		       COALESCE(c.name, ''), COALESCE(c.phone, '')
		FROM appointments a
		LEFT JOIN customers c ON a.customer_id = c.id
		WHERE 1=1
	`
	var args []any
	if filter.AppointmentID != "" {
		args = append(args, filter.AppointmentID)
		query += fmt.Sprintf(" AND a.appointment_id = $%d", len(args))
	}
	if filter.CustomerName != "" {
		args = append(args, "%"+filter.CustomerName+"%")
		query += fmt.Sprintf(" AND c.name ILIKE $%d", len(args))
	}
	if filter.CustomerPhone != "" {
		args = append(args, filter.CustomerPhone)
		query += fmt.Sprintf(" AND c.phone = $%d", len(args))
	}
	query += " ORDER BY a.appointment_time DESC LIMIT 5"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: find details: %w", err)
	}
	defer rows.Close()

	var out []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(
			&d.AppointmentID, &d.CustomerID, &d.Service, &d.Stylist,
			&d.AppointmentTime, &d.Status, &d.Price, &d.Notes, &d.Source,
			&d.CustomerName, &d.CustomerPhone,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// BookedSlots returns the scheduled/confirmed occupancy for a calendar day,
// optionally narrowed by service and stylist.
func (s *Store) BookedSlots(ctx context.Context, day string, service, stylist string) ([]BookedSlot, error) {
	query := `
		SELECT appointment_time, stylist, service
		FROM appointments
		WHERE DATE(appointment_time) = $1
		  AND status IN ('scheduled', 'confirmed')
	`
	args := []any{day}
	if service != "" {
		args = append(args, service)
		query += fmt.Sprintf(" AND service = $%d", len(args))
	}
	if stylist != "" {
		args = append(args, stylist)
		query += fmt.Sprintf(" AND stylist = $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: booked slots: %w", err)
	}
	defer rows.Close()

	var out []BookedSlot
	for rows.Next() {
		var b BookedSlot
		if err := rows.Scan(&b.Time, &b.Stylist, &b.Service); err != nil {
			return nil, fmt.Errorf("appointments: scan booked slot: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DistinctStylists lists every stylist seen in appointment history.
func (s *Store) DistinctStylists(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT stylist
		FROM appointments
		WHERE stylist IS NOT NULL AND stylist != ''
		ORDER BY stylist ASC
	`
	return s.stringColumn(ctx, query)
}

// PreferredStylists lists stylists customers have named as preferred.
func (s *Store) PreferredStylists(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT preferred_stylist
		FROM customers
		WHERE preferred_stylist IS NOT NULL AND preferred_stylist != ''
		ORDER BY preferred_stylist ASC
	`
	return s.stringColumn(ctx, query)
}

func (s *Store) stringColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out, rows.Err()
}

// BusyCounts returns scheduled/confirmed appointment counts per stylist for
// a calendar day.
func (s *Store) BusyCounts(ctx context.Context, day string) (map[string]int, error) {
	query := `
		SELECT stylist, COUNT(*)::int AS busy_slots
		FROM appointments
		WHERE DATE(appointment_time) = $1
		  AND status IN ('scheduled', 'confirmed')
		  AND stylist IS NOT NULL
		GROUP BY stylist
	`
	rows, err := s.pool.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("appointments: busy counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var stylist string
		var count int
		if err := rows.Scan(&stylist, &count); err != nil {
			return nil, fmt.Errorf("appointments: scan busy count: %w", err)
		}
		out[stylist] = count
	}
	return out, rows.Err()
}

// ServicePriceStats aggregates real booking history per service, most
// booked first.
func (s *Store) ServicePriceStats(ctx context.Context) ([]ServiceStats, error) {
	query := `
		SELECT service,
		       MIN(price), MAX(price), AVG(price),
		       COUNT(*)::int,
		       STRING_AGG(DISTINCT stylist, ', ')
		FROM appointments
		WHERE price > 0
		GROUP BY service
		ORDER BY COUNT(*) DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointments: service stats: %w", err)
	}
	defer rows.Close()

	var out []ServiceStats
	for rows.Next() {
		var st ServiceStats
		var stylists *string
		if err := rows.Scan(&st.Service, &st.MinPrice, &st.MaxPrice, &st.AvgPrice, &st.TotalBookings, &stylists); err != nil {
			return nil, fmt.Errorf("appointments: scan service stats: %w", err)
		}
		if stylists != nil {
			for _, name := range strings.Split(*stylists, ", ") {
				if name != "" {
					st.Stylists = append(st.Stylists, name)
				}
			}
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// RecentForCustomer returns a customer's newest appointments.
func (s *Store) RecentForCustomer(ctx context.Context, customerID string, limit int) ([]Appointment, error) {
	query := `
		SELECT appointment_id, service, stylist, appointment_time, status, price
		FROM appointments
		WHERE customer_id = $1
		ORDER BY appointment_time DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: recent: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.AppointmentID, &a.Service, &a.Stylist, &a.AppointmentTime, &a.Status, &a.Price); err != nil {
			return nil, fmt.Errorf("appointments: scan recent: %w", err)
		}
		a.CustomerID = customerID
		out = append(out, a)
	}
	return out, rows.Err()
}

// DayKey formats a time as the store's calendar-day key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
