package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/suncrest/suncrest-backend/config"
	cronjob "github.com/suncrest/suncrest-backend/internal/analytics/cron"
	"github.com/suncrest/suncrest-backend/internal/analytics/repository"
	"github.com/suncrest/suncrest-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	scheduler := cronjob.NewScheduler(repository.NewAnalyticsRepository(db))
	scheduler.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Println("worker shutting down")
	scheduler.Stop()
}
