package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"solardash/internal/cache"
	"solardash/internal/models"
	"solardash/internal/validation"
)

// BusinessConfigHandler reads and revises the business configuration.
type BusinessConfigHandler struct {
	store BusinessConfigStore
	cache *cache.Cache
}

// NewBusinessConfigHandler creates a new business config handler.
func NewBusinessConfigHandler(store BusinessConfigStore, c *cache.Cache) *BusinessConfigHandler {
	return &BusinessConfigHandler{store: store, cache: c}
}

// Get returns the current business config.
func (h *BusinessConfigHandler) Get(c fiber.Ctx) error {
	cfg, err := h.store.GetCurrentBusinessConfig(c.Context())
	if errors.Is(err, models.ErrNoBusinessConfig) {
		return jsonError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return failure(c, err, "failed to load business config")
	}
	return jsonSuccess(c, cfg)
}

// Update validates the body and stores it as the new current revision.
func (h *BusinessConfigHandler) Update(c fiber.Ctx) error {
	var cfg models.BusinessConfig
	if err := c.Bind().Body(&cfg); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg := normalizeBusinessConfig(&cfg); msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	ctx := c.Context()
	if err := h.store.InsertBusinessConfig(ctx, &cfg); err != nil {
		return failure(c, err, "failed to save business config")
	}
	h.cache.Invalidate(ctx, cache.KeyCompetitorReport)
	return jsonSuccess(c, cfg)
}

// normalizeBusinessConfig cleans cfg in place and returns a message for the
// first invalid field.
func normalizeBusinessConfig(cfg *models.BusinessConfig) string {
	cfg.BusinessName = strings.TrimSpace(cfg.BusinessName)
	if cfg.BusinessName == "" {
		return "businessName is required"
	}

	if cfg.Website != "" {
		cfg.Website = validation.NormalizeDomain(cfg.Website)
		if !validation.ValidateDomain(cfg.Website) {
			return "website must be a valid domain"
		}
	}

	if len(cfg.ServiceAreas) == 0 {
		return "at least one service area is required"
	}
	seen := make(map[string]struct{}, len(cfg.ServiceAreas))
	areas := make([]string, 0, len(cfg.ServiceAreas))
	for _, a := range cfg.ServiceAreas {
		area, msg := checkArea(a)
		if msg != "" {
			return msg
		}
		if _, dup := seen[area]; dup {
			continue
		}
		seen[area] = struct{}{}
		areas = append(areas, area)
	}
	cfg.ServiceAreas = areas

	for _, kw := range cfg.Keywords.Global {
		if !validation.ValidateKeyword(kw) {
			return "invalid keyword: " + kw
		}
	}
	for _, kws := range cfg.Keywords.Areas {
		for _, kw := range kws {
			if !validation.ValidateKeyword(kw) {
				return "invalid keyword: " + kw
			}
		}
	}
	for area, domains := range cfg.Keywords.Competitors {
		for i, d := range domains {
			d = validation.NormalizeDomain(d)
			if !validation.ValidateDomain(d) {
				return "invalid competitor domain: " + d
			}
			cfg.Keywords.Competitors[area][i] = d
		}
	}
	return ""
}
