// Package forecast projects revenue from historical monthly totals.
package forecast

import "github.com/suncrest/suncrest-backend/internal/analytics/repository"

// Projection is a least-squares fit over a monthly revenue series plus
// the projected value for the following month. Values are in cents.
type Projection struct {
	Slope          float64 `json:"slope"`
	Intercept      float64 `json:"intercept"`
	NextMonthCents float64 `json:"next_month_cents"`
	Months         int     `json:"months"`
}

// Project fits a straight line through the series by ordinary least
// squares, indexing months 0..n-1, and evaluates it at month n. A
// negative projection clamps to zero. Fewer than two data points yield
// a flat projection of the last observed value.
func Project(series []repository.MonthlyRevenue) Projection {
	n := len(series)
	if n == 0 {
		return Projection{}
	}
	if n == 1 {
		v := float64(series[0].RevenueCents)
		return Projection{
			Intercept:      v,
			NextMonthCents: v,
			Months:         1,
		}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, m := range series {
		x := float64(i)
		y := float64(m.RevenueCents)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		avg := sumY / fn
		return Projection{Intercept: avg, NextMonthCents: avg, Months: n}
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	next := slope*fn + intercept
	if next < 0 {
		next = 0
	}

	return Projection{
		Slope:          slope,
		Intercept:      intercept,
		NextMonthCents: next,
		Months:         n,
	}
}
