package models

import "time"

// Business type classifications for competitors.
const (
	BusinessInstaller     = "installer"
	BusinessEnergyCompany = "energy_company"
	BusinessRetailer      = "retailer"
)

// Trend and signal values.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
	TrendNew    = "new"
)

// Competitor is a business discovered in (or manually added to) search results.
// ID is derived from the normalized domain.
type Competitor struct {
	ID           string    `json:"id"`
	Domain       string    `json:"domain"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	BusinessType string    `json:"businessType"`
	Manual       bool      `json:"manual"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CompetitorRanking is a competitor's position for one keyword in one pass.
type CompetitorRanking struct {
	CompetitorID     string    `json:"competitorId"`
	Keyword          string    `json:"keyword"`
	Position         *int      `json:"position"`
	URL              string    `json:"url,omitempty"`
	Title            string    `json:"title,omitempty"`
	EstimatedTraffic int       `json:"estimatedTraffic"`
	Location         string    `json:"location"`
	CheckedAt        time.Time `json:"checkedAt"`
}

// IsInstaller reports whether the competitor installs systems.
func (c *Competitor) IsInstaller() bool {
	return c.BusinessType == BusinessInstaller
}

// IsEnergyCompany reports whether the competitor is a utility or energy company.
func (c *Competitor) IsEnergyCompany() bool {
	return c.BusinessType == BusinessEnergyCompany
}
