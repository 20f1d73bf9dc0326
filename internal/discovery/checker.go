package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"solardash/internal/models"
	"solardash/internal/scoring"
	"solardash/internal/serp"
	"solardash/internal/validation"
)

// Check is where a domain ranks for one keyword.
type Check struct {
	Keyword         string  `json:"keyword"`
	Position        *int    `json:"position"`
	URL             string  `json:"url,omitempty"`
	Title           string  `json:"title,omitempty"`
	EstimatedVolume int     `json:"estimatedVolume"`
	EstimatedClicks int     `json:"estimatedTraffic"`
	CTR             float64 `json:"ctr"`
	Fallback        bool    `json:"fallback,omitempty"`
}

// RankingStore persists keyword ranking observations.
type RankingStore interface {
	GetOrCreateLocation(ctx context.Context, name string) (*models.ServiceArea, error)
	InsertKeywordRanking(ctx context.Context, r *models.KeywordRanking) error
	UpdateLocationScore(ctx context.Context, name string, score int) error
}

// Checker looks up a domain's position for keywords, one SERP call at a time.
type Checker struct {
	src    serp.Source
	delay  time.Duration
	logger *slog.Logger
	rng    func() *rand.Rand
}

// NewChecker creates a Checker. A non-positive delay disables pacing.
func NewChecker(src serp.Source, delay time.Duration, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		src:    src,
		delay:  delay,
		logger: logger,
		rng:    func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
	}
}

// Mode reports the SERP source mode.
func (c *Checker) Mode() string {
	return c.src.Mode()
}

// CheckOne looks up a single keyword. Errors are returned, not substituted.
func (c *Checker) CheckOne(ctx context.Context, keyword, area, domain string) (Check, error) {
	keyword = validation.NormalizeKeyword(keyword)
	ranking, err := serp.FindDomainRanking(ctx, c.src, keyword, domain, area)
	if err != nil {
		return Check{}, err
	}
	return newCheck(keyword, area, ranking, false), nil
}

// CheckAll looks up every keyword in turn, pausing between calls. A failed
// lookup is replaced by a fallback position and reported in the returned
// error list; only cancellation stops early.
func (c *Checker) CheckAll(ctx context.Context, keywords []string, area, domain string) ([]Check, []string, error) {
	rng := c.rng()
	checks := make([]Check, 0, len(keywords))
	errs := []string{}

	for i, kw := range keywords {
		kw = validation.NormalizeKeyword(kw)
		if kw == "" {
			continue
		}
		if i > 0 && c.delay > 0 {
			if err := sleep(ctx, c.delay); err != nil {
				return checks, errs, err
			}
		}

		ch, err := c.CheckOne(ctx, kw, area, domain)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return checks, errs, ctxErr
			}
			c.logger.Warn("ranking lookup failed, using fallback", "keyword", kw, "area", area, "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", kw, err))
			ch = newCheck(kw, area, serp.FallbackRanking(rng, kw, area), true)
		}
		checks = append(checks, ch)
	}
	return checks, errs, nil
}

// BootstrapResult reports a keyword bootstrap for one area.
type BootstrapResult struct {
	Area        string       `json:"area"`
	Mode        string       `json:"mode"`
	Suggestions []Suggestion `json:"suggestions"`
	Rankings    []Check      `json:"rankings"`
	Inserted    int          `json:"inserted"`
	Score       int          `json:"score"`
	Errors      []string     `json:"errors"`
}

// Bootstrap discovers up to limit keywords for area, checks where domain
// ranks for each and records the observations. Rows inserted before a
// failure stay in place.
func (c *Checker) Bootstrap(ctx context.Context, store RankingStore, area, domain string, limit int) (*BootstrapResult, error) {
	area = validation.NormalizeArea(area)
	suggestions := Discover(area, limit)
	out := &BootstrapResult{Area: area, Mode: c.Mode(), Suggestions: suggestions, Errors: []string{}}

	loc, err := store.GetOrCreateLocation(ctx, area)
	if err != nil {
		return out, fmt.Errorf("get location %s: %w", area, err)
	}

	checks, errs, err := c.CheckAll(ctx, Keywords(suggestions), area, domain)
	out.Rankings = checks
	out.Errors = append(out.Errors, errs...)
	if err != nil {
		return out, err
	}

	positions := make([]*int, 0, len(checks))
	for _, ch := range checks {
		positions = append(positions, ch.Position)
		row := &models.KeywordRanking{
			LocationID: loc.ID,
			Keyword:    ch.Keyword,
			Position:   ch.Position,
			CTR:        ch.CTR,
		}
		if ch.Position != nil {
			row.Impressions = ch.EstimatedVolume
			row.Clicks = ch.EstimatedClicks
		}
		if err := store.InsertKeywordRanking(ctx, row); err != nil {
			return out, fmt.Errorf("insert ranking %q: %w", ch.Keyword, err)
		}
		out.Inserted++
	}

	// The area's overall score is the business's visibility across the checked keywords.
	out.Score = scoring.Visibility(positions)
	if err := store.UpdateLocationScore(ctx, area, out.Score); err != nil {
		return out, fmt.Errorf("update score %s: %w", area, err)
	}

	c.logger.Info("keyword bootstrap finished", "area", area, "keywords", len(checks), "errors", len(out.Errors))
	return out, nil
}

func newCheck(keyword, area string, r serp.DomainRanking, fallback bool) Check {
	ch := Check{
		Keyword:         keyword,
		Position:        r.Position,
		URL:             r.URL,
		Title:           r.Title,
		EstimatedVolume: scoring.EstimateVolume(keyword, area),
		EstimatedClicks: r.EstimatedTraffic,
		Fallback:        fallback,
	}
	if r.Position != nil {
		ch.CTR = scoring.CTR(*r.Position)
	}
	return ch
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
