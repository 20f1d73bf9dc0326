package serp

import (
	"context"
	"strings"
)

type rosterEntry struct {
	domain  string
	title   string
	snippet string
}

// roster is the fixed simulated ranking, one site per position starting at 1.
var roster = []rosterEntry{
	{"sunrun.com", "Sunrun - Solar Installation & Home Batteries", "America's leading home solar installer with flexible plans."},
	{"youtube.com", "How Solar Panel Installation Works - YouTube", "Watch a full residential solar install from start to finish."},
	{"tesla.com", "Tesla Solar Panels | Tesla", "Clean energy company offering solar panels and Powerwall."},
	{"sunpower.com", "SunPower - Solar Panels for Your Home", "Premium panels installed by certified local dealers."},
	{"yelp.com", "Top 10 Best Solar Installers Near Me - Yelp", "Reviews of local solar companies."},
	{"freedomsolarpower.com", "Freedom Solar Power: Texas Solar Installer", "Top rated solar contractor serving Texas homeowners."},
	{"energysage.com", "EnergySage: Compare Solar Quotes", "Compare quotes from pre-screened installers."},
	{"facebook.com", "Solar Energy Group | Facebook", "Join the discussion about home solar."},
	{"semprasolar.com", "Sempra Solar | Central Texas Solar Company", "Solar panel installation and roofing for Central Texas."},
	{"austinenergy.com", "Austin Energy - Solar Rebates", "Municipal electric utility offering solar incentives."},
	{"en.wikipedia.org", "Solar power - Wikipedia", "Solar power is the conversion of energy from sunlight."},
	{"solarreviews.com", "SolarReviews: Best Solar Companies 2026", "Independent ratings of solar companies."},
	{"homedepot.com", "Solar Panels - The Home Depot", "Shop solar panels, inverters and complete kits."},
	{"hillcountrysolar.com", "Hill Country Solar - Solar Installer in Round Rock", "Family owned solar install team since 2009."},
	{"reddit.com", "Is solar worth it in Texas? : r/solar", "Discussion thread."},
	{"txuenergy.com", "TXU Energy Solar Plans", "Retail electric provider with solar buyback plans."},
	{"bluebonnetsolar.com", "Bluebonnet Solar & Battery", "Solar panels and battery backup for Texas homes."},
	{"energy.gov", "Homeowner's Guide to Going Solar | Department of Energy", "Federal guidance for homeowners."},
	{"lonestarsolarsystems.com", "Lone Star Solar Systems: Licensed Solar Contractor", "Licensed electricians and solar contractor."},
	{"costco.com", "Solar Panel Kits | Costco", "Member pricing on solar panel kits."},
	{"angi.com", "The 10 Best Solar Companies Near Me - Angi", "Find top rated pros."},
	{"palmettosolar.com", "Palmetto Solar - Go Solar Today", "Solar installation with no upfront cost."},
	{"momentumsolar.com", "Momentum Solar | Residential Solar Installer", "Residential solar install experts."},
	{"nerdwallet.com", "How Much Do Solar Panels Cost? - NerdWallet", "Solar cost breakdown."},
	{"lowes.com", "Solar Panels at Lowes.com", "Shop solar panels and accessories."},
	{"reliant.com", "Reliant Energy Solar Solutions", "Electric company solar and battery offers."},
	{"sunnova.com", "Sunnova | Solar Energy Service Provider", "Energy company offering solar service plans."},
	{"linkedin.com", "Solar Installer Jobs - LinkedIn", "Browse solar jobs."},
	{"trinitysolar.com", "Trinity Solar - Solar Panel Installation", "Install solar with a trusted company."},
	{"ecoflow.com", "EcoFlow Solar Generators", "Portable power stations and solar panels."},
	{"homeadvisor.com", "Solar Installers Near Me - HomeAdvisor", "Compare local pros."},
	{"signaturesolar.com", "Signature Solar - Solar Equipment Supplier", "Inverters, panels and batteries shipped nationwide."},
	{"blueravensolar.com", "Blue Raven Solar | Solar Panel Installers", "Solar installer with in-house financing."},
	{"seia.org", "Solar Industry Research Data | SEIA", "Solar Energy Industries Association data."},
	{"greenmountainenergy.com", "Green Mountain Energy: Solar Buyback", "Renewable electric provider."},
	{"buildwithsolar.com", "Build With Solar - Roofing and Solar", "Roofing contractor integrating solar shingles."},
	{"instagram.com", "#solarpanels on Instagram", "Photos and videos."},
	{"renogy.com", "Renogy Solar Panels and Kits", "Off-grid solar products."},
	{"centraltexassolar.com", "Central Texas Solar Installers", "Solar install and service for Williamson County."},
	{"thumbtack.com", "Top Solar Panel Installers Near Me | Thumbtack", "Hire local pros."},
	{"sunsolarsolutions.com", "Sun Solar Solutions - Solar Contractor", "Commercial and residential solar contractor."},
	{"pinterest.com", "Solar Panel Ideas - Pinterest", "Discover ideas."},
	{"goodleap.com", "GoodLeap Solar Loans", "Financing for home solar."},
	{"bbb.org", "Solar Companies - Better Business Bureau", "Accredited businesses."},
	{"ambitenergy.com", "Ambit Energy Solar Plans", "Electric provider with solar options."},
	{"solarcityroofing.com", "Solar City Roofing & Solar", "Roofing and solar panel installation."},
	{"wholesalesolar.com", "Wholesale Solar - Solar Panels & Kits", "Discount solar equipment."},
}

// Simulated returns the same fixed roster on every call so that tracking runs
// are reproducible without network access.
type Simulated struct{}

// NewSimulated creates the simulated source.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Search ignores query and location and returns the roster.
func (s *Simulated) Search(ctx context.Context, query, location string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]Result, len(roster))
	for i, e := range roster {
		results[i] = Result{
			Title:    e.title,
			URL:      rosterURL(e.domain),
			Snippet:  e.snippet,
			Position: i + 1,
		}
	}
	return results, nil
}

// Mode reports ModeSimulated.
func (s *Simulated) Mode() string {
	return ModeSimulated
}

func rosterURL(domain string) string {
	if strings.Count(domain, ".") > 1 {
		return "https://" + domain + "/"
	}
	return "https://www." + domain + "/"
}
