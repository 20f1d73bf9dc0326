package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"solardash/internal/cache"
	"solardash/internal/jobs"
	"solardash/internal/models"
	"solardash/internal/tracking"
)

// CompetitorTrackingHandler serves the competitor report and triggers
// tracking runs.
type CompetitorTrackingHandler struct {
	store     CompetitorStore
	tracker   *tracking.Tracker
	scheduler *jobs.Scheduler
	cache     *cache.Cache
	topN      int
}

// NewCompetitorTrackingHandler creates a new competitor tracking handler.
func NewCompetitorTrackingHandler(store CompetitorStore, tracker *tracking.Tracker, scheduler *jobs.Scheduler, c *cache.Cache, topN int) *CompetitorTrackingHandler {
	if topN <= 0 {
		topN = tracking.DefaultTopN
	}
	return &CompetitorTrackingHandler{
		store:     store,
		tracker:   tracker,
		scheduler: scheduler,
		cache:     c,
		topN:      topN,
	}
}

type trackingReport struct {
	tracking.Report
	FromCache bool `json:"fromCache"`
}

type trackingActionRequest struct {
	Action       string `json:"action"`
	CompetitorID string `json:"competitorId"`
}

// Get returns the competitor report, from cache unless refresh=true.
func (h *CompetitorTrackingHandler) Get(c fiber.Ctx) error {
	ctx := c.Context()

	if c.Query("refresh") != "true" {
		var cached trackingReport
		if h.cache.Get(ctx, cache.KeyCompetitorReport, &cached) {
			cached.FromCache = true
			return jsonSuccess(c, cached)
		}
	}

	report, err := h.buildReport(ctx)
	if err != nil {
		return failure(c, err, "failed to load competitor tracking")
	}
	resp := trackingReport{Report: report}
	h.cache.Set(ctx, cache.KeyCompetitorReport, resp)
	return jsonSuccess(c, resp)
}

func (h *CompetitorTrackingHandler) buildReport(ctx context.Context) (tracking.Report, error) {
	var (
		in  tracking.ReportInput
		cfg *models.BusinessConfig
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.Competitors, err = h.store.ListCompetitors(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		in.Rankings, err = h.store.ListCompetitorRankings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		in.Previous, err = h.store.ListPreviousCompetitorRankings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cfg, err = h.store.GetCurrentBusinessConfig(gctx)
		if errors.Is(err, models.ErrNoBusinessConfig) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return tracking.Report{}, err
	}

	if cfg != nil {
		in.Keywords = cfg.Keywords.AllKeywords()
	}
	return tracking.BuildReport(in, h.topN), nil
}

// Post refreshes rankings of known competitors or removes one.
func (h *CompetitorTrackingHandler) Post(c fiber.Ctx) error {
	var req trackingActionRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	ctx := c.Context()

	switch req.Action {
	case "remove":
		if req.CompetitorID == "" {
			return jsonError(c, fiber.StatusBadRequest, "competitorId is required")
		}
		if err := h.store.DeleteCompetitor(ctx, req.CompetitorID); err != nil {
			return failure(c, err, "failed to remove competitor")
		}
		h.cache.Invalidate(ctx, cache.KeyCompetitorReport)
		return jsonSuccess(c, fiber.Map{"removed": req.CompetitorID})

	case "refresh":
		var result *tracking.ScheduleResult
		err := h.scheduler.Do(ctx, func(ctx context.Context) error {
			var err error
			result, err = h.refreshAll(ctx)
			return err
		})
		if err != nil {
			return failure(c, err, "failed to refresh competitor rankings")
		}
		h.cache.Invalidate(ctx, cache.KeyCompetitorReport)
		return jsonSuccess(c, result)

	default:
		return jsonError(c, fiber.StatusBadRequest, "action must be refresh or remove")
	}
}

func (h *CompetitorTrackingHandler) refreshAll(ctx context.Context) (*tracking.ScheduleResult, error) {
	cfg, err := h.store.GetCurrentBusinessConfig(ctx)
	if err != nil {
		return nil, err
	}
	competitors, err := h.store.ListCompetitors(ctx)
	if err != nil {
		return nil, err
	}
	return h.tracker.RefreshAll(ctx, cfg, competitors)
}

// Schedule runs a full tracking pass over every configured service area.
func (h *CompetitorTrackingHandler) Schedule(c fiber.Ctx) error {
	ctx := c.Context()
	result, err := h.scheduler.RunOnce(ctx)
	if err != nil {
		return failure(c, err, "failed to run competitor tracking")
	}
	h.cache.Invalidate(ctx, cache.KeyCompetitorReport)
	return jsonSuccess(c, result)
}

// ScheduleStatus reports the periodic tracking loop and the last completed run.
func (h *CompetitorTrackingHandler) ScheduleStatus(c fiber.Ctx) error {
	return jsonSuccess(c, h.scheduler.Status())
}
