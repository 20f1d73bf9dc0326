package tracking

import "solardash/internal/validation"

// denylist holds domains that rank for solar terms but are not competing
// businesses: video, social, reference, government, trade associations and
// lead-generation marketplaces.
var denylist = []string{
	// video and social
	"youtube.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"tiktok.com",
	"pinterest.com",
	"linkedin.com",
	"reddit.com",
	"quora.com",
	"nextdoor.com",
	// reference and review
	"wikipedia.org",
	"yelp.com",
	"bbb.org",
	"nerdwallet.com",
	"forbes.com",
	"consumerreports.org",
	"solarreviews.com",
	// government and trade associations
	"energy.gov",
	"irs.gov",
	"nrel.gov",
	"seia.org",
	"dsireusa.org",
	// lead generation
	"angi.com",
	"angieslist.com",
	"homeadvisor.com",
	"thumbtack.com",
	"energysage.com",
	"modernize.com",
	"porch.com",
	// search engines
	"google.com",
	"bing.com",
}

// IsDenied reports whether host belongs to a denylisted domain.
func IsDenied(host string) bool {
	for _, d := range denylist {
		if validation.HostMatches(host, d) {
			return true
		}
	}
	return false
}
