package mapper

import "github.com/plantnet/plantnet-api/internal/domains/stats/domain"

// DailyBar is one bar of the dashboard chart.
type DailyBar struct {
	Date         string  `json:"date"`
	DailyOrder   int64   `json:"dailyOrder"`
	DailyRevenue float64 `json:"dailyRevenue"`
}

// AdminStats keeps the field names the dashboard already reads.
type AdminStats struct {
	TotalUser    int64      `json:"totalUser"`
	TotalPlant   int64      `json:"totalPlant"`
	TotalOrder   int64      `json:"totalOrder"`
	TotalRevenue float64    `json:"totalRevenue"`
	BarChartData []DailyBar `json:"barChartData"`
}

func FromDomainStats(s *domain.AdminStats) AdminStats {
	if s == nil {
		return AdminStats{BarChartData: []DailyBar{}}
	}
	bars := make([]DailyBar, 0, len(s.Daily))
	for _, d := range s.Daily {
		bars = append(bars, DailyBar{Date: d.Date, DailyOrder: d.Orders, DailyRevenue: d.Revenue.InexactFloat64()})
	}
	return AdminStats{
		TotalUser:    s.TotalUsers,
		TotalPlant:   s.TotalPlants,
		TotalOrder:   s.TotalOrders,
		TotalRevenue: s.TotalRevenue.InexactFloat64(),
		BarChartData: bars,
	}
}
