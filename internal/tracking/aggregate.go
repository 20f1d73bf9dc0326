package tracking

import (
	"math"
	"sort"

	"solardash/internal/models"
	"solardash/internal/scoring"
)

// trendThreshold is the average-position change that counts as movement.
const trendThreshold = 2.0

// Signal thresholds on average position.
const (
	installerStrongBelow = 15.0
	energyWeakAbove      = 20.0
)

// KeywordPosition is one competitor's position for one keyword.
type KeywordPosition struct {
	Keyword          string `json:"keyword"`
	Position         *int   `json:"position"`
	URL              string `json:"url,omitempty"`
	EstimatedTraffic int    `json:"estimatedTraffic"`
}

// CompetitorSummary is a competitor with metrics derived from its rankings.
type CompetitorSummary struct {
	models.Competitor
	AveragePosition  *float64          `json:"averagePosition"`
	PreviousPosition *float64          `json:"previousPosition"`
	EstimatedTraffic int               `json:"estimatedTraffic"`
	Visibility       int               `json:"visibilityScore"`
	MarketShare      float64           `json:"marketShare"`
	BusinessSignal   string            `json:"businessSignal"`
	Trend            string            `json:"trend"`
	Keywords         []KeywordPosition `json:"keywords"`
}

// Summarize derives per-competitor metrics from the current rankings and the
// previous snapshot. Competitors are returned by visibility, highest first.
func Summarize(competitors []models.Competitor, rankings, previous []models.CompetitorRanking) []CompetitorSummary {
	current := groupByCompetitor(rankings)
	prior := groupByCompetitor(previous)

	out := make([]CompetitorSummary, 0, len(competitors))
	for _, c := range competitors {
		rows := current[c.ID]
		positions := make([]*int, 0, len(rows))
		keywords := make([]KeywordPosition, 0, len(rows))
		traffic := 0
		for _, r := range rows {
			positions = append(positions, r.Position)
			traffic += r.EstimatedTraffic
			keywords = append(keywords, KeywordPosition{
				Keyword:          r.Keyword,
				Position:         r.Position,
				URL:              r.URL,
				EstimatedTraffic: r.EstimatedTraffic,
			})
		}
		sort.Slice(keywords, func(i, j int) bool { return keywords[i].Keyword < keywords[j].Keyword })

		avg := scoring.AveragePosition(positions)
		s := CompetitorSummary{
			Competitor:       c,
			AveragePosition:  avg,
			EstimatedTraffic: traffic,
			Visibility:       scoring.Visibility(positions),
			BusinessSignal:   BusinessSignal(c, avg),
			Trend:            models.TrendNew,
			Keywords:         keywords,
		}
		if prev, ok := prior[c.ID]; ok {
			s.PreviousPosition = scoring.AveragePosition(positionsOf(prev))
			s.Trend = Trend(avg, s.PreviousPosition)
		}
		out = append(out, s)
	}

	assignMarketShare(out)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Visibility != out[j].Visibility {
			return out[i].Visibility > out[j].Visibility
		}
		if out[i].EstimatedTraffic != out[j].EstimatedTraffic {
			return out[i].EstimatedTraffic > out[j].EstimatedTraffic
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// BusinessSignal is a qualitative read of a competitor's strength from its
// business type and current average position. It is not derived from history;
// see Trend for that.
func BusinessSignal(c models.Competitor, avg *float64) string {
	if avg == nil {
		return models.TrendStable
	}
	switch {
	case c.IsInstaller() && *avg < installerStrongBelow:
		return models.TrendUp
	case c.IsEnergyCompany() && *avg > energyWeakAbove:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// Trend compares the current average position with the previous snapshot's.
// Lower positions are better, so a drop of at least trendThreshold is "up".
func Trend(current, previous *float64) string {
	switch {
	case current == nil && previous == nil:
		return models.TrendStable
	case previous == nil:
		return models.TrendUp
	case current == nil:
		return models.TrendDown
	}
	delta := *previous - *current
	switch {
	case delta >= trendThreshold:
		return models.TrendUp
	case delta <= -trendThreshold:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// assignMarketShare sets each competitor's share of the summed visibility.
// The figure is an illustrative heuristic, not a modeled click share.
func assignMarketShare(summaries []CompetitorSummary) {
	total := 0
	for _, s := range summaries {
		total += s.Visibility
	}
	if total == 0 {
		return
	}
	for i := range summaries {
		share := float64(summaries[i].Visibility) / float64(total) * 100
		summaries[i].MarketShare = math.Round(share*10) / 10
	}
}

func groupByCompetitor(rows []models.CompetitorRanking) map[string][]models.CompetitorRanking {
	out := make(map[string][]models.CompetitorRanking)
	for _, r := range rows {
		out[r.CompetitorID] = append(out[r.CompetitorID], r)
	}
	return out
}

func positionsOf(rows []models.CompetitorRanking) []*int {
	out := make([]*int, len(rows))
	for i, r := range rows {
		out[i] = r.Position
	}
	return out
}
