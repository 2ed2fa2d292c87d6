package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dashboardDateLayout = "2006-01-02"

// DashboardQuery bounds the range-scoped dashboard figures. To is exclusive.
type DashboardQuery struct {
	From    time.Time
	To      time.Time
	Country string
}

type DashboardCounts struct {
	TotalBookings  int64   `json:"totalBookings"`
	ActiveTours    int64   `json:"activeTours"`
	Revenue        float64 `json:"revenue"`
	NewUsers       int64   `json:"newUsers"`
	ReturningUsers int64   `json:"returningUsers"`
}

type DestinationStat struct {
	TourID       uuid.UUID `json:"tourId"`
	TourName     string    `json:"tourName"`
	Location     string    `json:"location"`
	BookingCount int64     `json:"bookingCount"`
}

type RecentBooking struct {
	ID           uuid.UUID `json:"id"`
	TourName     string    `json:"tourName"`
	CustomerName string    `json:"customerName"`
	TotalPrice   float64   `json:"totalPrice"`
	Status       string    `json:"status"`
	BookingDate  time.Time `json:"bookingDate"`
}

type PendingReview struct {
	ID        uuid.UUID `json:"id"`
	TourName  string    `json:"tourName"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type SystemLogSummary struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// EarningsBucket is one grouped revenue row: a month number, a week of the
// month or a calendar year depending on the query.
type EarningsBucket struct {
	Bucket   int
	Earnings float64
}

type DashboardRepository interface {
	Counts(ctx context.Context, q DashboardQuery) (*DashboardCounts, error)
	HotDestinations(ctx context.Context, q DashboardQuery, limit int) ([]DestinationStat, error)
	RecentBookings(ctx context.Context, q DashboardQuery, limit int) ([]RecentBooking, error)
	PendingReviews(ctx context.Context, limit int) ([]PendingReview, error)
	RecentSystemLogs(ctx context.Context, limit int) ([]SystemLogSummary, error)
	EarningsByMonth(ctx context.Context, year int, country string) ([]EarningsBucket, error)
	EarningsByWeek(ctx context.Context, monthStart time.Time, country string) ([]EarningsBucket, error)
	EarningsByYear(ctx context.Context, fromYear, toYear int, country string) ([]EarningsBucket, error)
}

// EarningsPoint is one chart sample.
type EarningsPoint struct {
	Period    string  `json:"period"`
	Earnings  float64 `json:"earnings"`
	TimeRange string  `json:"timeRange"`
}

type Dashboard struct {
	DashboardCounts
	From             string             `json:"from"`
	To               string             `json:"to"`
	HotDestinations  []DestinationStat  `json:"hotDestinations"`
	RecentBookings   []RecentBooking    `json:"recentBookings"`
	PendingReviews   []PendingReview    `json:"pendingReviews"`
	RecentSystemLogs []SystemLogSummary `json:"recentSystemLogs"`
	EarningsData     []EarningsPoint    `json:"earningsData"`
}

type DashboardService struct {
	repo DashboardRepository
	now  func() time.Time
}

func NewDashboardService(repo DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// ParseDashboardRange reads YYYY-MM-DD bounds. Both default to the current
// month; to is inclusive on input and exclusive in the returned query.
func ParseDashboardRange(from, to, country string, now time.Time) (DashboardQuery, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	q := DashboardQuery{From: monthStart, To: monthStart.AddDate(0, 1, 0), Country: strings.TrimSpace(country)}

	if from != "" {
		t, err := time.Parse(dashboardDateLayout, from)
		if err != nil {
			return q, invalid("from", "from must be a YYYY-MM-DD date")
		}
		q.From = t
	}
	if to != "" {
		t, err := time.Parse(dashboardDateLayout, to)
		if err != nil {
			return q, invalid("to", "to must be a YYYY-MM-DD date")
		}
		q.To = t.AddDate(0, 0, 1)
	}
	if !q.To.After(q.From) {
		return q, invalid("to", "to must not be before from")
	}
	return q, nil
}

// Get runs every dashboard query; nothing is cached.
func (s *DashboardService) Get(ctx context.Context, q DashboardQuery) (*Dashboard, error) {
	counts, err := s.repo.Counts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	d := &Dashboard{
		DashboardCounts: *counts,
		From:            q.From.Format(dashboardDateLayout),
		To:              q.To.AddDate(0, 0, -1).Format(dashboardDateLayout),
	}

	if d.HotDestinations, err = s.repo.HotDestinations(ctx, q, 10); err != nil {
		return nil, fmt.Errorf("hot destinations: %w", err)
	}
	if d.RecentBookings, err = s.repo.RecentBookings(ctx, q, 10); err != nil {
		return nil, fmt.Errorf("recent bookings: %w", err)
	}
	if d.PendingReviews, err = s.repo.PendingReviews(ctx, 10); err != nil {
		return nil, fmt.Errorf("pending reviews: %w", err)
	}
	if d.RecentSystemLogs, err = s.repo.RecentSystemLogs(ctx, 10); err != nil {
		return nil, fmt.Errorf("recent system logs: %w", err)
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	monthly, err := s.repo.EarningsByMonth(ctx, now.Year(), q.Country)
	if err != nil {
		return nil, fmt.Errorf("monthly earnings: %w", err)
	}
	weekly, err := s.repo.EarningsByWeek(ctx, monthStart, q.Country)
	if err != nil {
		return nil, fmt.Errorf("weekly earnings: %w", err)
	}
	yearly, err := s.repo.EarningsByYear(ctx, now.Year()-3, now.Year(), q.Country)
	if err != nil {
		return nil, fmt.Errorf("yearly earnings: %w", err)
	}

	d.EarningsData = ShapeEarnings(monthly, weekly, yearly, monthStart)
	return d, nil
}

// ShapeEarnings builds chart series: twelve months in calendar order, the
// weeks of the given month and the four years ending in its year, zero-filled.
func ShapeEarnings(monthly, weekly, yearly []EarningsBucket, monthStart time.Time) []EarningsPoint {
	index := func(rows []EarningsBucket) map[int]float64 {
		m := make(map[int]float64, len(rows))
		for _, r := range rows {
			m[r.Bucket] += r.Earnings
		}
		return m
	}

	out := make([]EarningsPoint, 0, 12+5+4)

	byMonth := index(monthly)
	for m := time.January; m <= time.December; m++ {
		out = append(out, EarningsPoint{Period: m.String()[:3], Earnings: byMonth[int(m)], TimeRange: "monthly"})
	}

	byWeek := index(weekly)
	days := monthStart.AddDate(0, 1, -1).Day()
	for w := 1; w <= (days+6)/7; w++ {
		out = append(out, EarningsPoint{Period: "Week " + strconv.Itoa(w), Earnings: byWeek[w], TimeRange: "weekly"})
	}

	byYear := index(yearly)
	for y := monthStart.Year() - 3; y <= monthStart.Year(); y++ {
		out = append(out, EarningsPoint{Period: strconv.Itoa(y), Earnings: byYear[y], TimeRange: "yearly"})
	}
	return out
}
