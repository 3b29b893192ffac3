package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the day key of the daily series.
const DateLayout = "2006-01-02"

// OrderFact is the slice of an order the statistics need.
type OrderFact struct {
	CreatedAt time.Time
	Price     decimal.Decimal
}

// DailyTotal is the order count and revenue of one UTC calendar day.
type DailyTotal struct {
	Date    string
	Orders  int64
	Revenue decimal.Decimal
}

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers   int64
	TotalPlants  int64
	TotalOrders  int64
	TotalRevenue decimal.Decimal
	Daily        []DailyTotal
	ComputedAt   time.Time
}

// BuildDailySeries groups facts by UTC day, oldest first.
func BuildDailySeries(facts []OrderFact) []DailyTotal {
	byDay := make(map[string]*DailyTotal)
	for _, f := range facts {
		key := f.CreatedAt.UTC().Format(DateLayout)
		day, ok := byDay[key]
		if !ok {
			day = &DailyTotal{Date: key, Revenue: decimal.Zero}
			byDay[key] = day
		}
		day.Orders++
		day.Revenue = day.Revenue.Add(f.Price)
	}
	series := make([]DailyTotal, 0, len(byDay))
	for _, day := range byDay {
		series = append(series, *day)
	}
	SortDaily(series)
	return series
}

// SortDaily orders a series by date string ascending.
func SortDaily(series []DailyTotal) {
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
}

// Totals sums a daily series.
func Totals(series []DailyTotal) (orders int64, revenue decimal.Decimal) {
	revenue = decimal.Zero
	for _, day := range series {
		orders += day.Orders
		revenue = revenue.Add(day.Revenue)
	}
	return orders, revenue
}
