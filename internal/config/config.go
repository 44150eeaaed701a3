// Package config loads and validates the analysis configuration document.
// The whole pipeline is driven by this single YAML file: exclude patterns,
// signature marker tables, per-domain rule sets, extraction limits, and
// scoring policy. Validation happens once at load; nothing downstream
// re-checks field shapes.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/julianshen/archguide/internal/analysis"
)

// Config is the top-level analysis configuration.
type Config struct {
	Exclude     []string               `yaml:"exclude"`
	MaxFileSize string                 `yaml:"maxFileSize"`
	Signatures  Signatures             `yaml:"signatures"`
	Domains     map[string]DomainRules `yaml:"domains"`
	Extraction  Extraction             `yaml:"extraction"`
	Scoring     Scoring                `yaml:"scoring"`
	Generation  Generation             `yaml:"generation"`
	Guides      Guides                 `yaml:"guides"`

	// Parsed at load time from the string fields above.
	MaxFileSizeBytes int64         `yaml:"-"`
	RequestDelay     time.Duration `yaml:"-"`
	RequestTimeout   time.Duration `yaml:"-"`
}

// Signatures holds the per-category marker tables forming the signature
// index: marker string lists keyed by capability name.
type Signatures struct {
	Frameworks map[string][]string `yaml:"frameworks"`
	Auth       map[string][]string `yaml:"auth"`
	Databases  map[string][]string `yaml:"databases"`
	State      map[string][]string `yaml:"state"`
	Styling    map[string][]string `yaml:"styling"`
}

// DomainRules holds the raw rule patterns for one architectural domain.
type DomainRules struct {
	FilePatterns     []string `yaml:"filePatterns"`
	FunctionPatterns []string `yaml:"functionPatterns"`
	ImportPatterns   []string `yaml:"importPatterns"`
}

// Extraction bounds the code-example extractor.
type Extraction struct {
	MaxExamplesPerDomain int      `yaml:"maxExamplesPerDomain"`
	MinExampleLines      int      `yaml:"minExampleLines"`
	MaxExampleLines      int      `yaml:"maxExampleLines"`
	PriorityFiles        []string `yaml:"priorityFiles"`
}

// Scoring carries the confidence policy. The weights are policy values,
// not tuned constants; they default to 0.4/0.4/0.2.
type Scoring struct {
	ConfidenceThreshold float64 `yaml:"confidenceThreshold"`
	Weights             Weights `yaml:"weights"`
}

// Weights are the confidence formula terms.
type Weights struct {
	Patterns      float64 `yaml:"patterns"`
	Examples      float64 `yaml:"examples"`
	Configuration float64 `yaml:"configuration"`
}

// Generation configures the external content-service collaborator.
type Generation struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	RequestDelay string `yaml:"requestDelay"`
	Timeout      string `yaml:"timeout"`
}

// Guides configures the output contract checked by the validation engine.
type Guides struct {
	RequiredSections []string `yaml:"requiredSections"`
}

// ConfigError reports a malformed or invalid configuration document.
// It is the only fatal pre-scan error class.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// Load reads, parses, and validates the configuration at path. A missing
// or malformed file is a *ConfigError. Defaults fill any omitted section.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("reading %s: %v", path, err)}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field shapes once, compiling every regex and parsing
// every string-typed quantity so later stages can assume a sound config.
func (c *Config) Validate() error {
	size, err := humanize.ParseBytes(c.MaxFileSize)
	if err != nil {
		return &ConfigError{Field: "maxFileSize", Msg: fmt.Sprintf("invalid size %q: %v", c.MaxFileSize, err)}
	}
	if size == 0 {
		return &ConfigError{Field: "maxFileSize", Msg: "must be greater than zero"}
	}
	c.MaxFileSizeBytes = int64(size)

	for name, rules := range c.Domains {
		if !analysis.IsValidDomain(analysis.Domain(name)) {
			return &ConfigError{Field: "domains", Msg: fmt.Sprintf("unknown domain %q", name)}
		}
		if err := checkPatterns(name, "filePatterns", rules.FilePatterns); err != nil {
			return err
		}
		if err := checkPatterns(name, "functionPatterns", rules.FunctionPatterns); err != nil {
			return err
		}
		if err := checkPatterns(name, "importPatterns", rules.ImportPatterns); err != nil {
			return err
		}
	}

	if c.Extraction.MaxExamplesPerDomain <= 0 {
		return &ConfigError{Field: "extraction.maxExamplesPerDomain", Msg: "must be positive"}
	}
	if c.Extraction.MinExampleLines <= 0 || c.Extraction.MaxExampleLines < c.Extraction.MinExampleLines {
		return &ConfigError{Field: "extraction", Msg: fmt.Sprintf(
			"invalid example line bounds [%d, %d]", c.Extraction.MinExampleLines, c.Extraction.MaxExampleLines)}
	}

	if t := c.Scoring.ConfidenceThreshold; t < 0 || t > 1 {
		return &ConfigError{Field: "scoring.confidenceThreshold", Msg: fmt.Sprintf("%v outside [0,1]", t)}
	}
	for field, w := range map[string]float64{
		"patterns":      c.Scoring.Weights.Patterns,
		"examples":      c.Scoring.Weights.Examples,
		"configuration": c.Scoring.Weights.Configuration,
	} {
		if w < 0 || w > 1 {
			return &ConfigError{Field: "scoring.weights." + field, Msg: fmt.Sprintf("%v outside [0,1]", w)}
		}
	}

	if c.Generation.RequestDelay != "" {
		d, err := time.ParseDuration(c.Generation.RequestDelay)
		if err != nil {
			return &ConfigError{Field: "generation.requestDelay", Msg: err.Error()}
		}
		c.RequestDelay = d
	}
	if c.Generation.Timeout != "" {
		d, err := time.ParseDuration(c.Generation.Timeout)
		if err != nil {
			return &ConfigError{Field: "generation.timeout", Msg: err.Error()}
		}
		c.RequestTimeout = d
	}

	return nil
}

func checkPatterns(domain, dimension string, patterns []string) error {
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return &ConfigError{
				Field: fmt.Sprintf("domains.%s.%s", domain, dimension),
				Msg:   fmt.Sprintf("invalid pattern %q: %v", p, err),
			}
		}
	}
	return nil
}
