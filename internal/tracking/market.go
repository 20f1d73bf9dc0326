package tracking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"solardash/internal/models"
)

// DefaultTopN is the number of leading competitors in a market summary.
const DefaultTopN = 5

// Gap opportunity buckets.
const (
	GapHigh   = "high"
	GapMedium = "medium"
	GapLow    = "low"
)

// KeywordGap rates how contested a tracked keyword is.
type KeywordGap struct {
	Keyword            string `json:"keyword"`
	CompetitorsInTop20 int    `json:"competitorsInTop20"`
	Opportunity        string `json:"opportunity"`
}

// MarketSummary describes the competitive landscape.
type MarketSummary struct {
	TotalCompetitors  int                 `json:"totalCompetitors"`
	TrackedKeywords   int                 `json:"trackedKeywords"`
	AverageVisibility float64             `json:"averageVisibility"`
	ByBusinessType    map[string]int      `json:"byBusinessType"`
	TopCompetitors    []CompetitorSummary `json:"topCompetitors"`
	KeywordGaps       []KeywordGap        `json:"keywordGaps"`
}

// Report is the read model served for competitor tracking.
type Report struct {
	Competitors []CompetitorSummary `json:"competitors"`
	Summary     MarketSummary       `json:"summary"`
	Insights    []string            `json:"insights"`
}

// ReportInput holds the stored data a Report is derived from.
type ReportInput struct {
	Competitors []models.Competitor
	Rankings    []models.CompetitorRanking
	Previous    []models.CompetitorRanking
	Keywords    []string
}

// BuildReport derives summaries, the market summary and insights.
func BuildReport(in ReportInput, topN int) Report {
	summaries := Summarize(in.Competitors, in.Rankings, in.Previous)
	market := BuildMarketSummary(summaries, in.Rankings, in.Keywords, topN)
	return Report{
		Competitors: summaries,
		Summary:     market,
		Insights:    Insights(summaries, market),
	}
}

// GapOpportunity buckets a keyword by how many competitors rank in the top 20.
func GapOpportunity(competitorsInTop20 int) string {
	switch {
	case competitorsInTop20 <= 2:
		return GapHigh
	case competitorsInTop20 <= 5:
		return GapMedium
	default:
		return GapLow
	}
}

// BuildMarketSummary takes the top N summaries (already sorted by visibility)
// and rates each keyword. When keywords is empty the keywords present in
// rankings are used.
func BuildMarketSummary(summaries []CompetitorSummary, rankings []models.CompetitorRanking, keywords []string, topN int) MarketSummary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	ranking := make(map[string]map[string]struct{})
	for _, r := range rankings {
		if _, ok := ranking[r.Keyword]; !ok {
			ranking[r.Keyword] = make(map[string]struct{})
		}
		if r.Position != nil && *r.Position <= DiscoveryMaxPosition {
			ranking[r.Keyword][r.CompetitorID] = struct{}{}
		}
	}
	if len(keywords) == 0 {
		for kw := range ranking {
			keywords = append(keywords, kw)
		}
	}
	keywords = normalizeKeywords(keywords)
	sort.Strings(keywords)

	gaps := make([]KeywordGap, 0, len(keywords))
	for _, kw := range keywords {
		n := len(ranking[kw])
		gaps = append(gaps, KeywordGap{Keyword: kw, CompetitorsInTop20: n, Opportunity: GapOpportunity(n)})
	}

	byType := make(map[string]int)
	visibility := 0
	for _, s := range summaries {
		byType[s.BusinessType]++
		visibility += s.Visibility
	}

	out := MarketSummary{
		TotalCompetitors: len(summaries),
		TrackedKeywords:  len(keywords),
		ByBusinessType:   byType,
		TopCompetitors:   summaries[:min(topN, len(summaries))],
		KeywordGaps:      gaps,
	}
	if len(summaries) > 0 {
		out.AverageVisibility = math.Round(float64(visibility)/float64(len(summaries))*10) / 10
	}
	return out
}

// Insights turns the summaries into short human-readable observations.
func Insights(summaries []CompetitorSummary, market MarketSummary) []string {
	if len(summaries) == 0 {
		return []string{"No competitors tracked yet. Run a tracking refresh to discover who ranks in your service areas."}
	}

	var out []string
	leader := summaries[0]
	out = append(out, fmt.Sprintf("%s leads with a visibility score of %d (about %.1f%% of tracked visibility).",
		leader.Name, leader.Visibility, leader.MarketShare))

	var open []string
	for _, g := range market.KeywordGaps {
		if g.Opportunity == GapHigh {
			open = append(open, g.Keyword)
		}
	}
	if len(open) > 0 {
		shown := open[:min(3, len(open))]
		out = append(out, fmt.Sprintf("%d keyword(s) have at most two competitors in the top 20: %s.",
			len(open), strings.Join(shown, ", ")))
	}

	var strong, weak, rising int
	for _, s := range summaries {
		switch s.BusinessSignal {
		case models.TrendUp:
			strong++
		case models.TrendDown:
			weak++
		}
		if s.Trend == models.TrendUp {
			rising++
		}
	}
	if strong > 0 {
		out = append(out, fmt.Sprintf("%d installer(s) average a top-15 position for your keywords.", strong))
	}
	if weak > 0 {
		out = append(out, fmt.Sprintf("%d energy provider(s) rank below position 20 on average.", weak))
	}
	if rising > 0 {
		out = append(out, fmt.Sprintf("%d competitor(s) improved their average position since the last check.", rising))
	}
	return out
}
