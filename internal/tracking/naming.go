package tracking

import (
	"strings"
	"unicode"

	"solardash/internal/models"
	"solardash/internal/validation"
)

// titleSeparators end the business-name part of a result title.
var titleSeparators = []string{" - ", " | ", ": ", " – ", " — "}

// minNameLength is the shortest title-derived name that is kept.
const minNameLength = 3

// CompetitorName derives a display name from a result title, falling back to
// the domain when the title is missing or too short.
func CompetitorName(title, domain string) string {
	name := strings.TrimSpace(title)
	cut := len(name)
	for _, sep := range titleSeparators {
		if i := strings.Index(name, sep); i >= 0 && i < cut {
			cut = i
		}
	}
	name = strings.TrimSpace(name[:cut])
	if len(name) >= minNameLength {
		return name
	}
	return NameFromDomain(domain)
}

// NameFromDomain turns "lone-star_solar.com" into "Lone Star Solar".
func NameFromDomain(domain string) string {
	host := validation.NormalizeDomain(domain)
	if i := strings.LastIndex(host, "."); i > 0 {
		host = host[:i]
	}
	words := strings.FieldsFunc(host, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var (
	installerTerms     = []string{"install", "contractor", "roofing"}
	energyCompanyTerms = []string{"energy company", "utility", "electric"}
)

// Classify assigns a business type from a result's title and snippet.
func Classify(title, snippet string) string {
	text := strings.ToLower(title + " " + snippet)
	if containsAny(text, installerTerms) {
		return models.BusinessInstaller
	}
	if containsAny(text, energyCompanyTerms) {
		return models.BusinessEnergyCompany
	}
	return models.BusinessRetailer
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
