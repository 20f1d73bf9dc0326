package api

import (
	"github.com/gofiber/fiber/v3"

	"solardash/internal/discovery"
	"solardash/internal/validation"
)

// maxLiveKeywords bounds a batch lookup; each keyword is one paced SERP call.
const maxLiveKeywords = 25

// LiveRankingsHandler looks up where a domain ranks right now.
type LiveRankingsHandler struct {
	configs        businessConfigReader
	checker        *discovery.Checker
	operatorDomain string
}

// NewLiveRankingsHandler creates a new live rankings handler.
func NewLiveRankingsHandler(configs businessConfigReader, checker *discovery.Checker, operatorDomain string) *LiveRankingsHandler {
	return &LiveRankingsHandler{configs: configs, checker: checker, operatorDomain: operatorDomain}
}

type liveRankingsRequest struct {
	Keywords []string `json:"keywords"`
	Location string   `json:"location"`
	Domain   string   `json:"domain"`
}

type liveRankingsResponse struct {
	Mode     string            `json:"mode"`
	Location string            `json:"location"`
	Domain   string            `json:"domain"`
	Rankings []discovery.Check `json:"rankings"`
	Errors   []string          `json:"errors"`
}

// Get checks a single ?keyword= in ?location= for ?domain=.
func (h *LiveRankingsHandler) Get(c fiber.Ctx) error {
	return h.check(c, liveRankingsRequest{
		Keywords: []string{c.Query("keyword")},
		Location: c.Query("location"),
		Domain:   c.Query("domain"),
	})
}

// Post checks a batch of keywords.
func (h *LiveRankingsHandler) Post(c fiber.Ctx) error {
	var req liveRankingsRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	return h.check(c, req)
}

func (h *LiveRankingsHandler) check(c fiber.Ctx, req liveRankingsRequest) error {
	location, msg := checkArea(req.Location)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if len(req.Keywords) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "at least one keyword is required")
	}
	if len(req.Keywords) > maxLiveKeywords {
		return jsonError(c, fiber.StatusBadRequest, "too many keywords")
	}
	keywords := make([]string, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		kw = validation.NormalizeKeyword(kw)
		if !validation.ValidateKeyword(kw) {
			return jsonError(c, fiber.StatusBadRequest, "invalid keyword: "+kw)
		}
		keywords = append(keywords, kw)
	}

	ctx := c.Context()
	domain := validation.NormalizeDomain(req.Domain)
	if domain == "" {
		var err error
		domain, err = operatorDomain(ctx, h.configs, h.operatorDomain)
		if err != nil {
			return failure(c, err, "failed to load business config")
		}
	}
	if !validation.ValidateDomain(domain) {
		return jsonError(c, fiber.StatusBadRequest, "a valid domain is required")
	}

	checks, errs, err := h.checker.CheckAll(ctx, keywords, location, domain)
	if err != nil {
		return failure(c, err, "ranking lookup interrupted")
	}
	return jsonSuccess(c, liveRankingsResponse{
		Mode:     h.checker.Mode(),
		Location: location,
		Domain:   domain,
		Rankings: checks,
		Errors:   errs,
	})
}
