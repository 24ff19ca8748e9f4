package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/suncrest/suncrest-backend/internal/analytics/repository"
)

// Scheduler periodically refreshes every tenant's analytics summary.
type Scheduler struct {
	repo *repository.AnalyticsRepository
	cron *cron.Cron
}

func NewScheduler(repo *repository.AnalyticsRepository) *Scheduler {
	return &Scheduler{repo: repo}
}

// Start registers the refresh job. Summaries recompute hourly, plus one
// immediate run so a fresh deployment serves data right away.
func (s *Scheduler) Start() {
	s.cron = cron.New(cron.WithSeconds())

	_, err := s.cron.AddFunc("0 0 * * * *", func() {
		s.refreshAll()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Analytics scheduler started (hourly summary refresh)")
	s.cron.Start()

	go s.refreshAll()
}

// Stop waits for any in-flight refresh to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tenants, err := s.repo.TenantIDs(ctx)
	if err != nil {
		log.Printf("Summary refresh failed to list tenants: %v", err)
		return
	}

	start := time.Now()
	refreshed := 0
	for _, tenantID := range tenants {
		if _, err := s.repo.RefreshSummary(ctx, tenantID); err != nil {
			log.Printf("Summary refresh failed for tenant %s: %v", tenantID, err)
			continue
		}
		refreshed++
	}
	log.Printf("Summary refresh done: %d/%d tenants in %s", refreshed, len(tenants), time.Since(start).Round(time.Millisecond))
}
