package validation

import (
	"testing"
)

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normal", "solar panels", "solar panels"},
		{"uppercase", "Solar Panels", "solar panels"},
		{"extra whitespace", "  solar   installation\t austin ", "solar installation austin"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKeyword(tt.in); got != tt.want {
				t.Errorf("NormalizeKeyword(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateKeyword(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    bool
	}{
		{"simple phrase", "solar installation", true},
		{"with area", "solar panels round rock, tx", true},
		{"with ampersand", "solar & battery", true},
		{"numbers", "30% tax credit", false},
		{"empty", "", false},
		{"leading space", " solar", false},
		{"uppercase", "Solar", false},
		{"script tag", "<script>", false},
		{"too long", string(make([]byte, 121)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateKeyword(tt.keyword); got != tt.want {
				t.Errorf("ValidateKeyword(%q) = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestValidateArea(t *testing.T) {
	tests := []struct {
		name  string
		area  string
		valid bool
	}{
		{"city state", "Round Rock, TX", true},
		{"single word", "Phoenix, AZ", true},
		{"apostrophe", "Coeur d'Alene, ID", true},
		{"missing state", "Austin", false},
		{"lowercase state", "Austin, tx", false},
		{"no space", "Austin,TX", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateArea(tt.area)
			if valid != tt.valid {
				t.Errorf("ValidateArea(%q) = %v (%s), want %v", tt.area, valid, msg, tt.valid)
			}
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "example.com", "example.com"},
		{"https", "https://example.com", "example.com"},
		{"http www", "http://www.example.com", "example.com"},
		{"path and query", "https://www.example.com/solar/?utm=x#top", "example.com"},
		{"port", "https://example.com:8443/a", "example.com"},
		{"uppercase", "HTTPS://WWW.Example.COM", "example.com"},
		{"trailing dot", "example.com.", "example.com"},
		{"credentials", "https://user:pw@example.com/", "example.com"},
		{"protocol relative", "//www.example.com/x", "example.com"},
		{"subdomain kept", "https://shop.example.com", "shop.example.com"},
		{"whitespace", "  www.example.com  ", "example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDomain(tt.in); got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDomain_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.example.com/path",
		"www.www.example.com",
		"example.com..",
		"www.",
		"http://[::1]:8080/",
		"HTTP://Sub.Example.Org:80",
		"user@www.example.com",
		"not a domain",
	}

	for _, in := range inputs {
		once := NormalizeDomain(in)
		twice := NormalizeDomain(once)
		if once != twice {
			t.Errorf("NormalizeDomain not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeDomain_EquivalentURLs(t *testing.T) {
	variants := []string{
		"https://www.sunpower.com/",
		"http://sunpower.com/residential",
		"sunpower.com",
		"www.sunpower.com/about?x=1",
	}
	want := NormalizeDomain(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeDomain(v); got != want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   bool
	}{
		{"example.com", true},
		{"solar-co.example.org", true},
		{"localhost", false},
		{"-bad.com", false},
		{"bad-.com", false},
		{"", false},
		{"has space.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			if got := ValidateDomain(tt.domain); got != tt.want {
				t.Errorf("ValidateDomain(%q) = %v, want %v", tt.domain, got, tt.want)
			}
		})
	}
}

func TestDomainID(t *testing.T) {
	if got := DomainID("https://www.Tesla.com/energy"); got != "tesla.com" {
		t.Errorf("DomainID() = %q, want %q", got, "tesla.com")
	}
	if DomainID("sunrun.com") != DomainID("http://www.sunrun.com/") {
		t.Error("DomainID() should be equal for equivalent URLs")
	}

	distinct := [][2]string{
		{"a-b.com", "a.b.com"},
		{"solar-city.com", "solar.city.com"},
		{"sun_power.com", "sun-power.com"},
	}
	for _, pair := range distinct {
		if DomainID(pair[0]) == DomainID(pair[1]) {
			t.Errorf("DomainID(%q) and DomainID(%q) collide: %q", pair[0], pair[1], DomainID(pair[0]))
		}
	}
}

func TestHostMatches(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		domain string
		want   bool
	}{
		{"exact", "sunrun.com", "sunrun.com", true},
		{"www host", "www.sunrun.com", "sunrun.com", true},
		{"subdomain", "go.sunrun.com", "sunrun.com", true},
		{"lookalike", "notsunrun.com", "sunrun.com", false},
		{"different", "tesla.com", "sunrun.com", false},
		{"empty domain", "tesla.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HostMatches(tt.host, tt.domain); got != tt.want {
				t.Errorf("HostMatches(%q, %q) = %v, want %v", tt.host, tt.domain, got, tt.want)
			}
		})
	}
}
