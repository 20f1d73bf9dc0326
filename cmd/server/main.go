package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"solardash/internal/cache"
	"solardash/internal/config"
	"solardash/internal/credentials"
	"solardash/internal/db"
	"solardash/internal/discovery"
	"solardash/internal/jobs"
	"solardash/internal/logging"
	"solardash/internal/metrics"
	"solardash/internal/serp"
	"solardash/internal/server"
	"solardash/internal/tracking"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.SetDefault()
	cfg := config.Load()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Seed the business config from YAML on first start
	seed, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	if bc := seed.BusinessConfig(); bc != nil {
		created, err := database.SeedBusinessConfig(ctx, bc)
		if err != nil {
			log.Fatalf("Failed to seed business config: %v", err)
		}
		if created {
			log.Printf("Seeded business config for %s (%d service areas)", bc.BusinessName, len(bc.ServiceAreas))
		}
	}

	metrics.Init(database, cfg.RankingWindowDays)

	src := metrics.InstrumentSource(serp.New(cfg, logger))
	log.Printf("SERP source: %s", src.Mode())

	tracker := tracking.New(src, database, tracking.Options{
		Delay:          cfg.SERPDelay,
		OperatorDomain: cfg.OperatorDomain,
		Logger:         logger,
		OnFinish:       metrics.RecordRun,
	})
	checker := discovery.NewChecker(src, cfg.SERPDelay, logger)

	responseCache := cache.New(cache.NewStore(cfg), cfg.CacheTTL, logger)
	defer responseCache.Close()

	scheduler := jobs.NewScheduler(database, tracker, cfg.ScheduleInterval, func(*tracking.ScheduleResult) {
		responseCache.Invalidate(context.Background(), cache.KeyCompetitorReport)
	})
	go scheduler.Start(ctx)

	creds := credentials.New(database, db.ErrTokenNotFound, cfg, logger)
	if providers := creds.Providers(); len(providers) > 0 {
		log.Printf("Credential providers: %v", providers)
	}

	srv := server.New(cfg)
	srv.RegisterRoutes(server.Deps{
		Store:       database,
		Tracker:     tracker,
		Checker:     checker,
		Scheduler:   scheduler,
		Cache:       responseCache,
		Credentials: creds,
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}
	log.Println("Server exited")
}
