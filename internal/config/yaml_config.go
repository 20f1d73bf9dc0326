package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"solardash/internal/models"
)

// YAMLConfig represents the structure of the config.yaml seed file.
// The business profile is easier to manage in YAML than env vars; it is
// written to the database once when no business config exists yet.
type YAMLConfig struct {
	Business BusinessSeed `yaml:"business"`
	Keywords KeywordsSeed `yaml:"keywords"`
}

// BusinessSeed defines the operator's business.
type BusinessSeed struct {
	Name         string   `yaml:"name"`
	Website      string   `yaml:"website"`
	ServiceAreas []string `yaml:"service_areas"`
}

// KeywordsSeed defines the keyword target.
type KeywordsSeed struct {
	Global      []string            `yaml:"global"`
	Areas       map[string][]string `yaml:"areas,omitempty"`       // area -> extra keywords
	Competitors map[string][]string `yaml:"competitors,omitempty"` // area -> manual competitor domains
}

// LoadYAMLConfig loads the YAML seed file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFile loads the YAML seed from path.
func LoadYAMLConfigFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// HasBusiness reports whether the seed names a business with service areas.
func (c *YAMLConfig) HasBusiness() bool {
	return c != nil && c.Business.Name != "" && len(c.Business.ServiceAreas) > 0
}

// BusinessConfig converts the seed into a business config revision, or nil
// when the seed names no business.
func (c *YAMLConfig) BusinessConfig() *models.BusinessConfig {
	if !c.HasBusiness() {
		return nil
	}
	keywords := models.NewKeywords(c.Keywords.Global)
	for area, kws := range c.Keywords.Areas {
		keywords = keywords.WithAreaKeywords(area, kws)
	}
	for area, domains := range c.Keywords.Competitors {
		keywords.Competitors[area] = append([]string{}, domains...)
	}
	return &models.BusinessConfig{
		BusinessName: c.Business.Name,
		Website:      c.Business.Website,
		ServiceAreas: append([]string{}, c.Business.ServiceAreas...),
		Keywords:     keywords,
	}
}
