package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"solardash/internal/discovery"
	"solardash/internal/models"
	"solardash/internal/validation"
)

// KeywordsHandler records and reports the business's own keyword rankings.
type KeywordsHandler struct {
	store          RankingStore
	checker        *discovery.Checker
	operatorDomain string
	windowDays     int
}

// NewKeywordsHandler creates a new keywords handler. operatorDomain is used
// when no business config names a website.
func NewKeywordsHandler(store RankingStore, checker *discovery.Checker, operatorDomain string, windowDays int) *KeywordsHandler {
	if windowDays <= 0 {
		windowDays = 60
	}
	return &KeywordsHandler{
		store:          store,
		checker:        checker,
		operatorDomain: operatorDomain,
		windowDays:     windowDays,
	}
}

type bootstrapRequest struct {
	Area  string `json:"area"`
	Limit int    `json:"limit"`
}

// Bootstrap discovers keywords for an area, checks the business's position
// for each and records the observations.
func (h *KeywordsHandler) Bootstrap(c fiber.Ctx) error {
	var req bootstrapRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	area, msg := checkArea(req.Area)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if req.Limit < 0 {
		return jsonError(c, fiber.StatusBadRequest, "limit must not be negative")
	}
	limit := req.Limit
	if limit == 0 {
		limit = discovery.DefaultLimit
	}

	ctx := c.Context()
	domain, err := operatorDomain(ctx, h.store, h.operatorDomain)
	if err != nil {
		return failure(c, err, "failed to load business config")
	}
	if domain == "" {
		return jsonError(c, fiber.StatusBadRequest, "business website is not configured")
	}

	result, err := h.checker.Bootstrap(ctx, h.store, area, domain, limit)
	if err != nil {
		return failure(c, err, "failed to bootstrap keyword rankings")
	}
	return jsonSuccess(c, result)
}

// Rankings returns rankings aggregated over the last ?days= days.
func (h *KeywordsHandler) Rankings(c fiber.Ctx) error {
	days := h.windowDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 3650 {
			return jsonError(c, fiber.StatusBadRequest, "days must be between 1 and 3650")
		}
		days = n
	}

	rankings, err := h.store.GetCurrentKeywordRankings(c.Context(), days)
	if err != nil {
		return failure(c, err, "failed to load keyword rankings")
	}
	if rankings == nil {
		rankings = []models.CurrentKeywordRanking{}
	}
	return jsonSuccess(c, fiber.Map{
		"days":     days,
		"rankings": rankings,
	})
}

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 500
)

// History returns the recorded observations for ?area= and ?keyword=,
// newest first.
func (h *KeywordsHandler) History(c fiber.Ctx) error {
	area, msg := checkArea(c.Query("area"))
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	keyword := validation.NormalizeKeyword(c.Query("keyword"))
	if !validation.ValidateKeyword(keyword) {
		return jsonError(c, fiber.StatusBadRequest, "keyword is required")
	}
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			return jsonError(c, fiber.StatusBadRequest, "limit must be between 1 and 500")
		}
		limit = n
	}

	ctx := c.Context()
	if _, err := h.store.GetLocationByName(ctx, area); err != nil {
		return failure(c, err, "failed to load location")
	}
	history, err := h.store.GetKeywordRankingHistory(ctx, area, keyword, limit)
	if err != nil {
		return failure(c, err, "failed to load keyword history")
	}
	if history == nil {
		history = []models.KeywordRanking{}
	}
	return jsonSuccess(c, fiber.Map{
		"area":    area,
		"keyword": keyword,
		"history": history,
	})
}

// Locations lists the service areas seen so far with their overall scores.
func (h *KeywordsHandler) Locations(c fiber.Ctx) error {
	locations, err := h.store.ListLocations(c.Context())
	if err != nil {
		return failure(c, err, "failed to load locations")
	}
	if locations == nil {
		locations = []models.ServiceArea{}
	}
	return jsonSuccess(c, locations)
}

type businessConfigReader interface {
	GetCurrentBusinessConfig(ctx context.Context) (*models.BusinessConfig, error)
}

// operatorDomain returns the configured business website, falling back to
// the OPERATOR_DOMAIN setting.
func operatorDomain(ctx context.Context, store businessConfigReader, fallback string) (string, error) {
	cfg, err := store.GetCurrentBusinessConfig(ctx)
	switch {
	case errors.Is(err, models.ErrNoBusinessConfig):
		return validation.NormalizeDomain(fallback), nil
	case err != nil:
		return "", err
	}
	if domain := validation.NormalizeDomain(cfg.Website); domain != "" {
		return domain, nil
	}
	return validation.NormalizeDomain(fallback), nil
}
