package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/database"
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/jackc/pgx/v5"
)

// countryMatch filters on tours.location; an empty country matches all rows.
const countryMatch = `($3::text = '' OR t.location ILIKE '%' || $3::text || '%')`

// DashboardRepository runs the admin dashboard aggregations over pgx.
type DashboardRepository struct {
	pool database.Querier
}

func NewDashboardRepository(pool database.Querier) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

func (r *DashboardRepository) Counts(ctx context.Context, q services.DashboardQuery) (*services.DashboardCounts, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM bookings b JOIN tours t ON t.id = b.tour_id
			WHERE b.booking_date >= $1 AND b.booking_date < $2 AND ` + countryMatch + `),
		(SELECT COUNT(*) FROM tours t WHERE t.status = $4 AND ` + countryMatch + `),
		(SELECT COALESCE(SUM(b.total_price), 0)::float8 FROM bookings b JOIN tours t ON t.id = b.tour_id
			WHERE b.status = $5 AND b.booking_date >= $1 AND b.booking_date < $2 AND ` + countryMatch + `),
		(SELECT COUNT(*) FROM users WHERE created_at >= NOW() - INTERVAL '30 days'),
		(SELECT COUNT(*) FROM (SELECT user_id FROM bookings GROUP BY user_id HAVING COUNT(*) > 1) returning_users)`

	var c services.DashboardCounts
	err := r.pool.QueryRow(ctx, query, q.From, q.To, q.Country, string(models.TourStatusActive), string(models.BookingStatusConfirmed)).
		Scan(&c.TotalBookings, &c.ActiveTours, &c.Revenue, &c.NewUsers, &c.ReturningUsers)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &c, nil
}

func (r *DashboardRepository) HotDestinations(ctx context.Context, q services.DashboardQuery, limit int) ([]services.DestinationStat, error) {
	query := `SELECT t.id, COALESCE(NULLIF(t.title, ''), t.name), t.location, COUNT(b.id)
		FROM bookings b JOIN tours t ON t.id = b.tour_id
		WHERE b.booking_date >= $1 AND b.booking_date < $2 AND ` + countryMatch + `
		GROUP BY t.id, t.title, t.name, t.location
		ORDER BY COUNT(b.id) DESC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, q.From, q.To, q.Country, limit)
	if err != nil {
		return nil, fmt.Errorf("hot destinations: %w", err)
	}
	defer rows.Close()

	stats := []services.DestinationStat{}
	for rows.Next() {
		var s services.DestinationStat
		if err := rows.Scan(&s.TourID, &s.TourName, &s.Location, &s.BookingCount); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *DashboardRepository) RecentBookings(ctx context.Context, q services.DashboardQuery, limit int) ([]services.RecentBooking, error) {
	query := `SELECT b.id, COALESCE(NULLIF(t.title, ''), t.name), COALESCE(NULLIF(u.name, ''), u.email),
			b.total_price::float8, b.status, b.booking_date
		FROM bookings b
		JOIN tours t ON t.id = b.tour_id
		JOIN users u ON u.id = b.user_id
		WHERE b.booking_date >= $1 AND b.booking_date < $2 AND ` + countryMatch + `
		ORDER BY b.booking_date DESC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, q.From, q.To, q.Country, limit)
	if err != nil {
		return nil, fmt.Errorf("recent bookings: %w", err)
	}
	defer rows.Close()

	out := []services.RecentBooking{}
	for rows.Next() {
		var b services.RecentBooking
		if err := rows.Scan(&b.ID, &b.TourName, &b.CustomerName, &b.TotalPrice, &b.Status, &b.BookingDate); err != nil {
			return nil, fmt.Errorf("scan recent booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *DashboardRepository) PendingReviews(ctx context.Context, limit int) ([]services.PendingReview, error) {
	query := `SELECT rv.id, COALESCE(NULLIF(t.title, ''), t.name), COALESCE(NULLIF(u.name, ''), u.email),
			rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		JOIN tours t ON t.id = rv.tour_id
		JOIN users u ON u.id = rv.user_id
		WHERE rv.status = $1
		ORDER BY rv.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, string(models.ReviewStatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("pending reviews: %w", err)
	}
	defer rows.Close()

	out := []services.PendingReview{}
	for rows.Next() {
		var p services.PendingReview
		if err := rows.Scan(&p.ID, &p.TourName, &p.UserName, &p.Rating, &p.Comment, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending review: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *DashboardRepository) RecentSystemLogs(ctx context.Context, limit int) ([]services.SystemLogSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, type, message, created_at FROM system_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent system logs: %w", err)
	}
	defer rows.Close()

	out := []services.SystemLogSummary{}
	for rows.Next() {
		var l services.SystemLogSummary
		if err := rows.Scan(&l.ID, &l.Type, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan system log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *DashboardRepository) EarningsByMonth(ctx context.Context, year int, country string) ([]services.EarningsBucket, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	query := `SELECT EXTRACT(MONTH FROM b.booking_date)::int, COALESCE(SUM(b.total_price), 0)::float8
		FROM bookings b JOIN tours t ON t.id = b.tour_id
		WHERE b.status = $4 AND b.booking_date >= $1 AND b.booking_date < $2 AND ` + countryMatch + `
		GROUP BY 1 ORDER BY 1`
	return r.buckets(ctx, "earnings by month", query, start, start.AddDate(1, 0, 0), country, string(models.BookingStatusConfirmed))
}

// EarningsByWeek buckets the month into weeks of seven days from the 1st.
func (r *DashboardRepository) EarningsByWeek(ctx context.Context, monthStart time.Time, country string) ([]services.EarningsBucket, error) {
	query := `SELECT ((EXTRACT(DAY FROM b.booking_date)::int - 1) / 7) + 1, COALESCE(SUM(b.total_price), 0)::float8
		FROM bookings b JOIN tours t ON t.id = b.tour_id
		WHERE b.status = $4 AND b.booking_date >= $1 AND b.booking_date < $2 AND ` + countryMatch + `
		GROUP BY 1 ORDER BY 1`
	return r.buckets(ctx, "earnings by week", query, monthStart, monthStart.AddDate(0, 1, 0), country, string(models.BookingStatusConfirmed))
}

func (r *DashboardRepository) EarningsByYear(ctx context.Context, fromYear, toYear int, country string) ([]services.EarningsBucket, error) {
	from := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(toYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	query := `SELECT EXTRACT(YEAR FROM b.booking_date)::int, COALESCE(SUM(b.total_price), 0)::float8
		FROM bookings b JOIN tours t ON t.id = b.tour_id
		WHERE b.status = $4 AND b.booking_date >= $1 AND b.booking_date < $2 AND ` + countryMatch + `
		GROUP BY 1 ORDER BY 1`
	return r.buckets(ctx, "earnings by year", query, from, to, country, string(models.BookingStatusConfirmed))
}

func (r *DashboardRepository) buckets(ctx context.Context, what, query string, args ...any) ([]services.EarningsBucket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return collectBuckets(rows, what)
}

func collectBuckets(rows pgx.Rows, what string) ([]services.EarningsBucket, error) {
	defer rows.Close()

	out := []services.EarningsBucket{}
	for rows.Next() {
		var b services.EarningsBucket
		if err := rows.Scan(&b.Bucket, &b.Earnings); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}
