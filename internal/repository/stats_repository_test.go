package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

func TestFillWeek(t *testing.T) {
	first := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday
	rows := FillWeek(first, map[string]model.DayStats{
		"2026-03-04": {Sales: decimal.RequireFromString("40.5"), Orders: 3},
	})
	if len(rows) != 7 {
		t.Fatalf("rows = %d, want 7", len(rows))
	}
	if rows[0].Day != "Mon" || rows[6].Day != "Sun" {
		t.Fatalf("days = %s..%s", rows[0].Day, rows[6].Day)
	}
	if rows[2].Orders != 3 || !rows[2].Sales.Equal(decimal.RequireFromString("40.5")) {
		t.Fatalf("wednesday = %+v", rows[2])
	}
	if rows[1].Orders != 0 || !rows[1].Sales.IsZero() {
		t.Fatalf("tuesday = %+v", rows[1])
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 3, 4, 23, 59, 0, 0, time.FixedZone("x", 2*3600))
	got := startOfDay(in)
	want := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("startOfDay = %s, want %s", got, want)
	}
}
