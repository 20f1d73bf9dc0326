// Package discovery suggests keywords for a service area and ranks them by
// estimated opportunity.
package discovery

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"solardash/internal/models"
	"solardash/internal/scoring"
	"solardash/internal/validation"
)

// DefaultLimit is the number of suggestions returned when no limit is given.
const DefaultLimit = 12

// Template categories.
const (
	CategoryService   = "service"
	CategoryProduct   = "product"
	CategoryIncentive = "incentive"
)

// ErrNoKeywords is returned when Apply receives no usable keywords.
var ErrNoKeywords = errors.New("no valid keywords to apply")

// Suggestion is a candidate keyword for a service area.
type Suggestion struct {
	Keyword         string `json:"keyword"`
	Category        string `json:"category"`
	EstimatedVolume int    `json:"estimatedVolume"`
	CompetitorCount int    `json:"competitorCount"`
	Opportunity     int    `json:"opportunity"`
}

type template struct {
	pattern  string
	category string
}

var templates = []template{
	{"solar installation %s", CategoryService},
	{"solar installers %s", CategoryService},
	{"solar company %s", CategoryService},
	{"best solar company %s", CategoryService},
	{"top rated solar installers %s", CategoryService},
	{"solar panel installation cost %s", CategoryService},
	{"residential solar %s", CategoryService},
	{"solar panels %s", CategoryProduct},
	{"solar battery storage %s", CategoryProduct},
	{"tesla powerwall %s", CategoryProduct},
	{"solar roof %s", CategoryProduct},
	{"solar tax credit %s", CategoryIncentive},
	{"solar incentives %s", CategoryIncentive},
	{"solar rebates %s", CategoryIncentive},
	{"solar financing %s", CategoryIncentive},
	{"solar loans %s", CategoryIncentive},
}

// densityRule maps keyword substrings to an assumed number of competitors.
// Rules are checked in order; the first match wins.
type densityRule struct {
	terms []string
	count int
}

var densityRules = []densityRule{
	{[]string{"best", "top rated"}, 6},
	{[]string{"near me"}, 5},
	{[]string{"installation", "installer"}, 4},
	{[]string{"cost", "price"}, 3},
	{[]string{"tax credit", "incentive", "rebate", "financing", "loan"}, 2},
}

const defaultDensity = 3

// CompetitorDensity estimates how many competitors target keyword.
func CompetitorDensity(keyword string) int {
	kw := strings.ToLower(keyword)
	for _, rule := range densityRules {
		for _, term := range rule.terms {
			if strings.Contains(kw, term) {
				return rule.count
			}
		}
	}
	return defaultDensity
}

// Discover returns up to limit keyword suggestions for area, best first.
// Output depends only on its inputs.
func Discover(area string, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultLimit
	}

	place := strings.ToLower(validation.NormalizeArea(area))
	seen := make(map[string]struct{}, len(templates))
	suggestions := make([]Suggestion, 0, len(templates))

	for _, t := range templates {
		keyword := validation.NormalizeKeyword(fmt.Sprintf(t.pattern, place))
		if _, dup := seen[keyword]; dup {
			continue
		}
		seen[keyword] = struct{}{}

		volume := scoring.EstimateVolume(keyword, area)
		density := CompetitorDensity(keyword)
		suggestions = append(suggestions, Suggestion{
			Keyword:         keyword,
			Category:        t.category,
			EstimatedVolume: volume,
			CompetitorCount: density,
			Opportunity:     scoring.Opportunity(volume, density),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Opportunity != b.Opportunity {
			return a.Opportunity > b.Opportunity
		}
		if a.EstimatedVolume != b.EstimatedVolume {
			return a.EstimatedVolume > b.EstimatedVolume
		}
		return a.Keyword < b.Keyword
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// Keywords returns the keyword strings of suggestions in order.
func Keywords(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Keyword
	}
	return out
}

// Apply merges keywords into area's keyword list and returns the next config
// revision. current is not modified. Invalid keywords are skipped; if none
// remain ErrNoKeywords is returned.
func Apply(current *models.BusinessConfig, area string, keywords []string) (models.BusinessConfig, error) {
	if current == nil {
		return models.BusinessConfig{}, models.ErrNoBusinessConfig
	}
	area = validation.NormalizeArea(area)
	if ok, msg := validation.ValidateArea(area); !ok {
		return models.BusinessConfig{}, fmt.Errorf("invalid area: %s", msg)
	}

	valid := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = validation.NormalizeKeyword(kw)
		if validation.ValidateKeyword(kw) {
			valid = append(valid, kw)
		}
	}
	if len(valid) == 0 {
		return models.BusinessConfig{}, ErrNoKeywords
	}

	next := models.BusinessConfig{
		ID:           uuid.New(),
		BusinessName: current.BusinessName,
		Website:      current.Website,
		ServiceAreas: append([]string{}, current.ServiceAreas...),
		Keywords:     current.Keywords.WithAreaKeywords(area, valid),
	}
	if !current.HasArea(area) {
		next.ServiceAreas = append(next.ServiceAreas, area)
	}
	return next, nil
}
