package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/studyhub-labs/librarypro-api/internal/models"
)

// PeriodPredicate selects payments by their transaction date.
type PeriodPredicate func(date time.Time) bool

// SameMonth builds a predicate matching a calendar month.
func SameMonth(year int, month time.Month) PeriodPredicate {
	return func(date time.Time) bool {
		d := Midnight(date)
		return d.Year() == year && d.Month() == month
	}
}

// AggregateRevenue sums payment amounts whose date satisfies the predicate.
// The result is independent of payment order.
func AggregateRevenue(payments []models.Payment, pred PeriodPredicate) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if pred(p.Date) {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// MonthlyRevenue sums the amounts of payments made in the given month.
func MonthlyRevenue(payments []models.Payment, year int, month time.Month) decimal.Decimal {
	return AggregateRevenue(payments, SameMonth(year, month))
}

// MonthRevenue is one point of the trailing revenue window.
type MonthRevenue struct {
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// TrailingMonths computes revenue for the n months ending with the month of
// asOf, oldest first.
func TrailingMonths(payments []models.Payment, asOf time.Time, n int) []MonthRevenue {
	ref := Midnight(asOf)
	window := make([]MonthRevenue, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := time.Date(ref.Year(), ref.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		window = append(window, MonthRevenue{
			Year:    m.Year(),
			Month:   m.Month(),
			Revenue: MonthlyRevenue(payments, m.Year(), m.Month()),
		})
	}
	return window
}

// ForecastResult carries the naive linear projection over a trailing window.
type ForecastResult struct {
	Average     decimal.Decimal `json:"average"`
	Trend       decimal.Decimal `json:"trend"`
	NextMonth   decimal.Decimal `json:"next_month"`
	NextQuarter decimal.Decimal `json:"next_quarter"`
}

// Forecast extrapolates next-month revenue from a trailing window using
// trend = (last - first) / 2 and forecast = average + trend. This is a
// deliberately simple two-point linear heuristic, not a statistical model;
// treat its output as a rough indicator only.
func Forecast(window []MonthRevenue) ForecastResult {
	if len(window) == 0 {
		return ForecastResult{Average: decimal.Zero, Trend: decimal.Zero, NextMonth: decimal.Zero, NextQuarter: decimal.Zero}
	}

	sum := decimal.Zero
	for _, m := range window {
		sum = sum.Add(m.Revenue)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(window))))

	trend := decimal.Zero
	if len(window) > 1 {
		trend = window[len(window)-1].Revenue.Sub(window[0].Revenue).Div(decimal.NewFromInt(2))
	}

	next := avg.Add(trend)
	if next.IsNegative() {
		next = decimal.Zero
	}
	quarter := next.Mul(decimal.NewFromInt(3)).Add(trend.Mul(decimal.NewFromInt(3)))
	if quarter.IsNegative() {
		quarter = decimal.Zero
	}

	return ForecastResult{Average: avg, Trend: trend, NextMonth: next, NextQuarter: quarter}
}
