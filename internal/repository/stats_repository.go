package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// StatsRepo aggregates the sales ledger for the dashboard and the
// report command.  Days are calendar days in UTC.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a new StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Daily summarises the non-deleted sales of day.  Expenses are not
// tracked, so profit equals sales.
func (r *StatsRepo) Daily(ctx context.Context, day time.Time) (model.DailyStats, error) {
	start := startOfDay(day)
	end := start.AddDate(0, 0, 1)
	var (
		total decimal.NullDecimal
		count int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount), COUNT(*) FROM sales
		 WHERE deleted_at IS NULL AND created_at >= ? AND created_at < ?`,
		start, end).Scan(&total, &count)
	if err != nil {
		return model.DailyStats{}, err
	}
	sales := decimal.Zero
	if total.Valid {
		sales = total.Decimal
	}
	return model.DailyStats{
		TotalSales:    sales,
		TotalExpenses: decimal.Zero,
		Profit:        sales,
		OrderCount:    count,
	}, nil
}

// Weekly returns one row per day for the seven days ending on day,
// oldest first.  Days without sales are present with zero values.
func (r *StatsRepo) Weekly(ctx context.Context, day time.Time) ([]model.DayStats, error) {
	last := startOfDay(day)
	first := last.AddDate(0, 0, -6)
	rows, err := r.db.QueryContext(ctx,
		`SELECT DATE(created_at) AS d, SUM(amount), COUNT(*) FROM sales
		 WHERE deleted_at IS NULL AND created_at >= ? AND created_at < ?
		 GROUP BY d`,
		first, last.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := map[string]model.DayStats{}
	for rows.Next() {
		var (
			d     time.Time
			total decimal.Decimal
			count int
		)
		if err := rows.Scan(&d, &total, &count); err != nil {
			return nil, err
		}
		byDay[d.Format("2006-01-02")] = model.DayStats{Sales: total, Orders: count}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return FillWeek(first, byDay), nil
}

// FillWeek expands per-date aggregates into seven consecutive rows
// starting at first.
func FillWeek(first time.Time, byDay map[string]model.DayStats) []model.DayStats {
	out := make([]model.DayStats, 0, 7)
	for i := 0; i < 7; i++ {
		d := first.AddDate(0, 0, i)
		row := byDay[d.Format("2006-01-02")]
		row.Day = d.Weekday().String()[:3]
		row.Date = d
		if row.Sales.IsZero() {
			row.Sales = decimal.Zero
		}
		out = append(out, row)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
