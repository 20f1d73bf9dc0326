package server

import (
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solardash/internal/cache"
	"solardash/internal/credentials"
	"solardash/internal/discovery"
	"solardash/internal/handlers"
	"solardash/internal/handlers/api"
	"solardash/internal/jobs"
	"solardash/internal/middleware"
	"solardash/internal/tracking"
)

// Store is the database surface the routes need.
type Store interface {
	api.CompetitorStore
	api.BusinessConfigStore
	api.RankingStore
	handlers.ProbeStore
}

// Deps are the services the routes are wired to.
type Deps struct {
	Store       Store
	Tracker     *tracking.Tracker
	Checker     *discovery.Checker
	Scheduler   *jobs.Scheduler
	Cache       *cache.Cache
	Credentials *credentials.Store
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(d Deps) {
	// Initialize middleware
	auth := middleware.NewTokenAuth(s.Cfg.APIToken)
	if !auth.Enabled() {
		log.Println("API_TOKEN not set; SERP-triggering endpoints are open")
	}

	// Initialize handlers
	probeHandler := handlers.NewProbeHandler(d.Store, s.Cfg.SERPMode())
	trackingHandler := api.NewCompetitorTrackingHandler(d.Store, d.Tracker, d.Scheduler, d.Cache, s.Cfg.TopCompetitors)
	discoveryHandler := api.NewKeywordDiscoveryHandler(d.Store, d.Cache, s.Cfg.DiscoveryLimit)
	keywordsHandler := api.NewKeywordsHandler(d.Store, d.Checker, s.Cfg.OperatorDomain, s.Cfg.RankingWindowDays)
	liveHandler := api.NewLiveRankingsHandler(d.Store, d.Checker, s.Cfg.OperatorDomain)
	configHandler := api.NewBusinessConfigHandler(d.Store, d.Cache)
	credentialsHandler := api.NewCredentialsHandler(d.Credentials)

	// Probe and metrics routes
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	r := s.App.Group("/api")

	// Competitor tracking
	r.Get("/competitor-tracking", trackingHandler.Get)
	r.Post("/competitor-tracking", auth.RequireToken, trackingHandler.Post)
	r.Get("/competitor-tracking/schedule", trackingHandler.ScheduleStatus)
	r.Post("/competitor-tracking/schedule", auth.RequireToken, trackingHandler.Schedule)

	// Keywords
	r.Get("/keyword-discovery", discoveryHandler.Suggest)
	r.Post("/keyword-discovery", auth.RequireToken, discoveryHandler.Apply)
	r.Post("/keywords/bootstrap", auth.RequireToken, keywordsHandler.Bootstrap)
	r.Get("/keywords/rankings", keywordsHandler.Rankings)
	r.Get("/keywords/history", keywordsHandler.History)
	r.Get("/locations", keywordsHandler.Locations)
	r.Get("/live-rankings", auth.RequireToken, liveHandler.Get)
	r.Post("/live-rankings", auth.RequireToken, liveHandler.Post)

	// Business config
	r.Get("/business-config", configHandler.Get)
	r.Post("/business-config", auth.RequireToken, configHandler.Update)

	// Credentials
	r.Get("/credentials/:provider", auth.RequireToken, credentialsHandler.Status)
	r.Post("/credentials/:provider/refresh", auth.RequireToken, credentialsHandler.Refresh)
	r.Delete("/credentials/:provider", auth.RequireToken, credentialsHandler.Disconnect)
}
