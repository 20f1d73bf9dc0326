package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidKeywords is returned when stored target keywords are neither a
	// list nor the structured object.
	ErrInvalidKeywords = errors.New("target keywords must be a list or an object")

	// ErrNoBusinessConfig is returned when no business config has been saved yet.
	ErrNoBusinessConfig = errors.New("business config not found")
)

// BusinessConfig is one revision of the operator's business settings.
// Only the most recently created revision is current.
type BusinessConfig struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"businessName"`
	Website      string    `json:"website"`
	ServiceAreas []string  `json:"serviceAreas"`
	Keywords     Keywords  `json:"targetKeywords"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Keywords is the structured keyword target. Older rows stored a bare list;
// ParseKeywords folds that into Global.
type Keywords struct {
	Global      []string            `json:"global"`
	Areas       map[string][]string `json:"areas"`
	Competitors map[string][]string `json:"competitors"`
}

// ParseKeywords normalizes stored target keywords into the structured shape.
// It accepts a JSON array of strings, the structured object, or null.
func ParseKeywords(raw []byte) (Keywords, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return NewKeywords(nil), nil
	}

	switch trimmed[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return Keywords{}, err
		}
		return NewKeywords(list), nil
	case '{':
		var k Keywords
		if err := json.Unmarshal(trimmed, &k); err != nil {
			return Keywords{}, err
		}
		return k.normalized(), nil
	default:
		return Keywords{}, ErrInvalidKeywords
	}
}

// NewKeywords builds a structured keyword target from a global list.
func NewKeywords(global []string) Keywords {
	return Keywords{Global: global}.normalized()
}

// UnmarshalJSON accepts both stored shapes.
func (k *Keywords) UnmarshalJSON(data []byte) error {
	// Decode through an alias so the structured branch does not recurse.
	type plain Keywords
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p plain
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return err
		}
		*k = Keywords(p).normalized()
		return nil
	}
	parsed, err := ParseKeywords(trimmed)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// HasArea reports whether area is one of the configured service areas.
func (c *BusinessConfig) HasArea(area string) bool {
	for _, a := range c.ServiceAreas {
		if strings.EqualFold(a, area) {
			return true
		}
	}
	return false
}

// ForArea returns the global keywords followed by the area's own keywords,
// deduplicated in order.
func (k Keywords) ForArea(area string) []string {
	out := append([]string{}, k.Global...)
	out = append(out, k.Areas[area]...)
	return dedupe(out)
}

// AllKeywords returns every tracked keyword across global and area lists, sorted.
func (k Keywords) AllKeywords() []string {
	all := append([]string{}, k.Global...)
	for _, kws := range k.Areas {
		all = append(all, kws...)
	}
	all = dedupe(all)
	sort.Strings(all)
	return all
}

// CompetitorDomains returns the manually configured competitor domains for an area.
func (k Keywords) CompetitorDomains(area string) []string {
	return k.Competitors[area]
}

// WithAreaKeywords returns a copy with keywords merged into the area list.
func (k Keywords) WithAreaKeywords(area string, keywords []string) Keywords {
	out := k.clone()
	out.Areas[area] = dedupe(append(out.Areas[area], keywords...))
	return out
}

func (k Keywords) normalized() Keywords {
	out := Keywords{
		Global:      dedupe(k.Global),
		Areas:       make(map[string][]string, len(k.Areas)),
		Competitors: make(map[string][]string, len(k.Competitors)),
	}
	for area, kws := range k.Areas {
		out.Areas[area] = dedupe(kws)
	}
	for area, domains := range k.Competitors {
		out.Competitors[area] = dedupe(domains)
	}
	if out.Global == nil {
		out.Global = []string{}
	}
	return out
}

func (k Keywords) clone() Keywords {
	return Keywords{
		Global:      append([]string{}, k.Global...),
		Areas:       cloneMap(k.Areas),
		Competitors: cloneMap(k.Competitors),
	}
}

func cloneMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for key, v := range m {
		out[key] = append([]string{}, v...)
	}
	return out
}

// dedupe lowercases, trims and removes duplicates, keeping first occurrences.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
