package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suncrest/suncrest-backend/internal/analytics/repository"
)

func series(values ...int64) []repository.MonthlyRevenue {
	out := make([]repository.MonthlyRevenue, 0, len(values))
	month := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		out = append(out, repository.MonthlyRevenue{
			Month:        month.AddDate(0, i, 0),
			RevenueCents: v,
		})
	}
	return out
}

func TestProject(t *testing.T) {
	t.Run("empty series projects zero", func(t *testing.T) {
		p := Project(nil)
		assert.Zero(t, p.NextMonthCents)
		assert.Zero(t, p.Months)
	})

	t.Run("single month projects flat", func(t *testing.T) {
		p := Project(series(500_000))
		assert.Equal(t, float64(500_000), p.NextMonthCents)
		assert.Equal(t, 1, p.Months)
	})

	t.Run("linear growth extrapolates", func(t *testing.T) {
		p := Project(series(100, 200, 300, 400))
		assert.InDelta(t, 100.0, p.Slope, 1e-9)
		assert.InDelta(t, 500.0, p.NextMonthCents, 1e-9)
		assert.Equal(t, 4, p.Months)
	})

	t.Run("flat series stays flat", func(t *testing.T) {
		p := Project(series(250, 250, 250))
		assert.InDelta(t, 0.0, p.Slope, 1e-9)
		assert.InDelta(t, 250.0, p.NextMonthCents, 1e-9)
	})

	t.Run("steep decline clamps at zero", func(t *testing.T) {
		p := Project(series(300, 150, 0))
		assert.Zero(t, p.NextMonthCents)
	})
}
