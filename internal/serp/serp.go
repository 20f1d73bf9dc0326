// Package serp looks up search engine result positions.
//
// Two sources satisfy the same Source interface: Simulated returns a fixed,
// reproducible roster of industry sites and Live scrapes a results page. The
// source is chosen once from configuration by New.
package serp

import (
	"context"
	"log/slog"
	"math/rand"
	"net/url"
	"time"

	"solardash/internal/config"
	"solardash/internal/scoring"
	"solardash/internal/validation"
)

// Mode names reported by sources.
const (
	ModeSimulated = "simulated"
	ModeLive      = "live"
)

// MaxResults is the number of accepted results a source returns at most.
const MaxResults = scoring.MaxPosition

// FallbackMaxPosition bounds the pseudo-random position used when a lookup fails.
const FallbackMaxPosition = 50

// Result is one organic search result.
type Result struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet,omitempty"`
	Position int    `json:"position"`
}

// Host returns the normalized hostname of the result URL.
func (r Result) Host() string {
	u, err := url.Parse(r.URL)
	if err != nil || u.Host == "" {
		return validation.NormalizeDomain(r.URL)
	}
	return validation.NormalizeDomain(u.Host)
}

// DomainRanking is where a domain ranks for a query.
type DomainRanking struct {
	Position         *int   `json:"position"`
	URL              string `json:"url,omitempty"`
	Title            string `json:"title,omitempty"`
	EstimatedTraffic int    `json:"estimatedTraffic"`
}

// Source returns ordered search results for a query in a location.
type Source interface {
	Search(ctx context.Context, query, location string) ([]Result, error)
	Mode() string
}

// New returns the live source when the live scraper is enabled, otherwise the
// simulated roster.
func New(cfg *config.Config, logger *slog.Logger) Source {
	if cfg.LiveScraperEnabled {
		return NewLive(LiveOptions{
			BaseURL:   cfg.SERPBaseURL,
			UserAgent: cfg.SERPUserAgent,
			Timeout:   cfg.SERPTimeout,
			Retry: RetryConfig{
				MaxAttempts: cfg.SERPMaxRetries,
				BaseDelay:   500 * time.Millisecond,
				Logger:      logger,
			},
			Logger: logger,
		})
	}
	return NewSimulated()
}

// FindDomainRanking searches for query and reports the first result whose host
// belongs to domain. Position is nil and traffic zero when the domain is not
// among the first MaxResults results.
func FindDomainRanking(ctx context.Context, src Source, query, domain, location string) (DomainRanking, error) {
	results, err := src.Search(ctx, query, location)
	if err != nil {
		return DomainRanking{}, err
	}
	return MatchDomain(results, query, domain, location), nil
}

// MatchDomain finds domain in already fetched results.
func MatchDomain(results []Result, query, domain, location string) DomainRanking {
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	for _, r := range results {
		if !scoring.ValidPosition(r.Position) {
			continue
		}
		if validation.HostMatches(r.Host(), domain) {
			pos := r.Position
			return DomainRanking{
				Position:         &pos,
				URL:              r.URL,
				Title:            r.Title,
				EstimatedTraffic: scoring.EstimateTraffic(query, location, &pos),
			}
		}
	}
	return DomainRanking{}
}

// Fallback returns a pseudo-random position in [1, FallbackMaxPosition] to
// stand in for a failed lookup.
func Fallback(rng *rand.Rand) int {
	return rng.Intn(FallbackMaxPosition) + 1
}

// FallbackRanking builds a DomainRanking from a fallback position.
func FallbackRanking(rng *rand.Rand, query, location string) DomainRanking {
	pos := Fallback(rng)
	return DomainRanking{
		Position:         &pos,
		EstimatedTraffic: scoring.EstimateTraffic(query, location, &pos),
	}
}
