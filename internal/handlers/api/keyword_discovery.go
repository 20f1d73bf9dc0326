package api

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"solardash/internal/cache"
	"solardash/internal/discovery"
)

// KeywordDiscoveryHandler suggests keywords for a service area and applies
// accepted suggestions to the business config.
type KeywordDiscoveryHandler struct {
	store BusinessConfigStore
	cache *cache.Cache
	limit int
}

// NewKeywordDiscoveryHandler creates a new keyword discovery handler.
func NewKeywordDiscoveryHandler(store BusinessConfigStore, c *cache.Cache, limit int) *KeywordDiscoveryHandler {
	if limit <= 0 {
		limit = discovery.DefaultLimit
	}
	return &KeywordDiscoveryHandler{store: store, cache: c, limit: limit}
}

type applyKeywordsRequest struct {
	Area     string   `json:"area"`
	Keywords []string `json:"keywords"`
}

// Suggest returns scored keyword suggestions for ?area=, at most ?limit=.
func (h *KeywordDiscoveryHandler) Suggest(c fiber.Ctx) error {
	area, msg := checkArea(c.Query("area"))
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	limit := h.limit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return jsonError(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	return jsonSuccess(c, fiber.Map{
		"area":        area,
		"suggestions": discovery.Discover(area, limit),
	})
}

// Apply merges accepted keywords into the area and stores a new config revision.
func (h *KeywordDiscoveryHandler) Apply(c fiber.Ctx) error {
	var req applyKeywordsRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	area, msg := checkArea(req.Area)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	ctx := c.Context()
	current, err := h.store.GetCurrentBusinessConfig(ctx)
	if err != nil {
		return failure(c, err, "failed to load business config")
	}
	next, err := discovery.Apply(current, area, req.Keywords)
	if err != nil {
		return failure(c, err, "failed to apply keywords")
	}
	if err := h.store.InsertBusinessConfig(ctx, &next); err != nil {
		return failure(c, err, "failed to save business config")
	}
	h.cache.Invalidate(ctx, cache.KeyCompetitorReport)
	return jsonSuccess(c, next)
}
