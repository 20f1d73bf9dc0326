package validation

import (
	"net"
	"regexp"
	"strings"
)

// KeywordPattern defines the valid keyword format: letters, digits, spaces and
// a few punctuation characters that show up in search phrases.
var KeywordPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9 &'+.,/-]*$`)

// AreaPattern matches a service area in "City, ST" form.
var AreaPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]*, [A-Z]{2}$`)

// domainPattern matches a bare, normalized hostname.
var domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)

// NormalizeKeyword lowercases a keyword and collapses internal whitespace.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(strings.ToLower(keyword)), " ")
}

// ValidateKeyword checks that a normalized keyword is a plausible search phrase.
func ValidateKeyword(keyword string) bool {
	if keyword == "" || len(keyword) > 120 {
		return false
	}
	return KeywordPattern.MatchString(keyword)
}

// NormalizeArea trims and collapses whitespace in a service area name.
func NormalizeArea(area string) string {
	return strings.Join(strings.Fields(area), " ")
}

// ValidateArea checks a service area is in "City, ST" form.
func ValidateArea(area string) (bool, string) {
	if area == "" {
		return false, "area is required"
	}
	if len(area) > 100 {
		return false, "area is too long"
	}
	if !AreaPattern.MatchString(area) {
		return false, `area must look like "City, ST"`
	}
	return true, ""
}

// NormalizeDomain reduces a URL or hostname to its bare lower-cased host:
// scheme, credentials, leading "www.", port, path, query and trailing dot are
// removed. The result is stable under repeated application.
func NormalizeDomain(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	} else {
		s = strings.TrimPrefix(s, "//")
	}

	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		s = h
	}
	s = strings.TrimRight(s, ".")
	for strings.HasPrefix(s, "www.") {
		s = strings.TrimPrefix(s, "www.")
	}
	return s
}

// ValidateDomain checks that a normalized domain is a syntactically valid host.
func ValidateDomain(domain string) bool {
	if domain == "" || len(domain) > 253 {
		return false
	}
	return domainPattern.MatchString(domain)
}

// DomainID derives the stable competitor id for a domain or URL. Distinct
// normalized domains always get distinct ids.
func DomainID(domain string) string {
	return NormalizeDomain(domain)
}

// HostMatches reports whether host belongs to domain (exact or subdomain).
func HostMatches(host, domain string) bool {
	host, domain = NormalizeDomain(host), NormalizeDomain(domain)
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
