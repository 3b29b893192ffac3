package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySeries(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*3600)
	facts := []OrderFact{
		{CreatedAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("10.00")},
		// still March 1st in UTC
		{CreatedAt: time.Date(2025, 3, 2, 1, 0, 0, 0, plus2), Price: decimal.RequireFromString("2.50")},
		{CreatedAt: time.Date(2025, 3, 2, 23, 59, 0, 0, time.UTC), Price: decimal.RequireFromString("5.25")},
		{CreatedAt: time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("1")},
	}

	series := BuildDailySeries(facts)
	require.Len(t, series, 3)
	assert.Equal(t, "2024-12-31", series[0].Date)
	assert.Equal(t, "2025-03-01", series[1].Date)
	assert.Equal(t, "2025-03-02", series[2].Date)
	assert.Equal(t, int64(2), series[2].Orders)
	assert.True(t, decimal.RequireFromString("15.25").Equal(series[2].Revenue))

	orders, revenue := Totals(series)
	assert.Equal(t, int64(4), orders)
	assert.True(t, decimal.RequireFromString("18.75").Equal(revenue))
}

func TestBuildDailySeries_Empty(t *testing.T) {
	series := BuildDailySeries(nil)
	assert.Empty(t, series)
	orders, revenue := Totals(series)
	assert.Zero(t, orders)
	assert.True(t, revenue.IsZero())
}
