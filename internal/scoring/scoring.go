// Package scoring holds the pure ranking heuristics shared by keyword
// discovery, the SERP sources and competitor tracking.
package scoring

import (
	"math"
	"strings"
)

// MaxPosition is the deepest search result position that is tracked.
const MaxPosition = 100

// DefaultVolume is used when a keyword matches no entry in the volume table.
const DefaultVolume = 1000

// ctrByPosition holds the click-through rate (percent) for the first page.
var ctrByPosition = [10]float64{31.7, 24.7, 18.7, 13.1, 9.5, 6.9, 5.1, 3.8, 2.8, 2.2}

// baseVolumes maps keyword prefixes to estimated monthly searches.
var baseVolumes = map[string]int{
	"solar installation":            5000,
	"solar installer":               3500,
	"solar installers":              3200,
	"solar panels":                  8000,
	"solar panel installation":      4500,
	"solar panel cost":              2800,
	"solar panels cost":             2600,
	"solar company":                 3000,
	"solar companies":               3400,
	"solar contractor":              1600,
	"solar energy":                  4000,
	"solar power":                   3800,
	"solar battery":                 2200,
	"solar battery storage":         1800,
	"tesla powerwall":               2400,
	"home solar":                    2000,
	"residential solar":             1900,
	"commercial solar":              1200,
	"solar roof":                    1700,
	"solar tax credit":              2100,
	"solar incentives":              1500,
	"solar rebates":                 1300,
	"solar financing":               1100,
	"solar loans":                   900,
	"solar lease":                   800,
	"best solar company":            1400,
	"best solar companies":          1500,
	"top rated solar installers":    700,
	"solar installation near me":    6000,
	"solar panel installation cost": 1600,
	"net metering":                  1000,
	"solar maintenance":             600,
	"solar panel repair":            700,
}

// locationMultipliers scale volume by metro size and solar adoption.
var locationMultipliers = map[string]float64{
	"los angeles":  1.6,
	"phoenix":      1.5,
	"san diego":    1.4,
	"las vegas":    1.3,
	"houston":      1.3,
	"dallas":       1.3,
	"austin":       1.3,
	"san antonio":  1.2,
	"denver":       1.1,
	"tampa":        1.1,
	"orlando":      1.1,
	"sacramento":   1.1,
	"tucson":       1.1,
	"fort worth":   1.1,
	"round rock":   0.9,
	"cedar park":   0.8,
	"georgetown":   0.8,
	"pflugerville": 0.7,
	"leander":      0.7,
	"san marcos":   0.7,
	"kyle":         0.6,
	"hutto":        0.6,
}

// CTR returns the expected click-through rate, in percent, for a 1-based
// result position. Positions below 1 have no click-through.
func CTR(position int) float64 {
	switch {
	case position < 1:
		return 0
	case position <= 10:
		return ctrByPosition[position-1]
	case position <= 20:
		return 1.0
	case position <= 50:
		return 0.5
	default:
		return 0.1
	}
}

// BaseVolume returns the static volume for the longest table prefix of keyword.
func BaseVolume(keyword string) int {
	kw := normalizeKeyword(keyword)
	best, bestLen := DefaultVolume, 0
	for prefix, volume := range baseVolumes {
		if len(prefix) > bestLen && strings.HasPrefix(kw, prefix) {
			best, bestLen = volume, len(prefix)
		}
	}
	return best
}

// LocationMultiplier returns the volume multiplier for a "City, ST" location.
// When several metros match, the longest name wins.
func LocationMultiplier(location string) float64 {
	loc := strings.ToLower(location)
	best, bestLen := 1.0, 0
	for metro, m := range locationMultipliers {
		if len(metro) > bestLen && strings.Contains(loc, metro) {
			best, bestLen = m, len(metro)
		}
	}
	return best
}

// EstimateVolume estimates the monthly search volume for keyword in location.
func EstimateVolume(keyword, location string) int {
	return int(math.Round(float64(BaseVolume(keyword)) * LocationMultiplier(location)))
}

// EstimateTraffic converts a ranking position into monthly visits.
// A nil position yields zero.
func EstimateTraffic(keyword, location string, position *int) int {
	if position == nil {
		return 0
	}
	return int(math.Round(float64(EstimateVolume(keyword, location)) * CTR(*position) / 100))
}

// Opportunity scores a keyword from 0 to 100. Higher volume raises it and
// each assumed competitor lowers it by 10, capped at 60.
func Opportunity(volume, competitorCount int) int {
	penalty := competitorCount * 10
	if penalty > 60 {
		penalty = 60
	}
	if penalty < 0 {
		penalty = 0
	}
	score := int(math.Round(float64(volume)/120)) - penalty
	return clamp(score, 0, 100)
}

// Visibility returns the share (0-100) of the best possible score, where the
// best is ranking #1 for every keyword. Nil positions contribute nothing.
func Visibility(positions []*int) int {
	if len(positions) == 0 {
		return 0
	}
	total := 0
	for _, p := range positions {
		if p == nil {
			continue
		}
		if v := 101 - *p; v > 0 {
			total += v
		}
	}
	return int(math.Round(100 * float64(total) / float64(len(positions)*100)))
}

// AveragePosition averages the non-nil positions, rounded to one decimal.
// It returns nil when nothing ranked.
func AveragePosition(positions []*int) *float64 {
	sum, n := 0, 0
	for _, p := range positions {
		if p != nil {
			sum += *p
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(float64(sum)/float64(n)*10) / 10
	return &avg
}

// ValidPosition reports whether p is a trackable result position.
func ValidPosition(p int) bool {
	return p >= 1 && p <= MaxPosition
}

func normalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(strings.ToLower(keyword)), " ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
