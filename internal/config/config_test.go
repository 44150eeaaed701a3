package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archguide.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(1_000_000), cfg.MaxFileSizeBytes)
	assert.Equal(t, 0.7, cfg.Scoring.ConfidenceThreshold)
	assert.Equal(t, 0.4, cfg.Scoring.Weights.Patterns)
	assert.Equal(t, 0.4, cfg.Scoring.Weights.Examples)
	assert.Equal(t, 0.2, cfg.Scoring.Weights.Configuration)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Len(t, cfg.Domains, 10)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
maxFileSize: 512KB
extraction:
  maxExamplesPerDomain: 5
  minExampleLines: 3
  maxExampleLines: 40
scoring:
  confidenceThreshold: 0.5
  weights:
    patterns: 0.5
    examples: 0.3
    configuration: 0.2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(512_000), cfg.MaxFileSizeBytes)
	assert.Equal(t, 5, cfg.Extraction.MaxExamplesPerDomain)
	assert.Equal(t, 0.5, cfg.Scoring.ConfidenceThreshold)
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Patterns)
	// Untouched sections keep their defaults.
	assert.NotEmpty(t, cfg.Signatures.Frameworks)
	assert.NotEmpty(t, cfg.Exclude)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "maxFileSize: [broken")
	_, err := Load(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestValidateRejectsBadSize(t *testing.T) {
	path := writeConfig(t, `maxFileSize: "huge"`)
	_, err := Load(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "maxFileSize", cfgErr.Field)
}

func TestValidateRejectsUnknownDomain(t *testing.T) {
	path := writeConfig(t, `
domains:
  observability:
    filePatterns: [".*"]
`)
	_, err := Load(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "domains", cfgErr.Field)
}

func TestValidateRejectsBadPattern(t *testing.T) {
	path := writeConfig(t, `
domains:
  components:
    filePatterns: ["[unclosed"]
`)
	_, err := Load(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Field, "components")
}

func TestValidateRejectsBadBounds(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"zero max examples", "extraction:\n  maxExamplesPerDomain: 0\n  minExampleLines: 5\n  maxExampleLines: 60"},
		{"inverted line bounds", "extraction:\n  maxExamplesPerDomain: 3\n  minExampleLines: 60\n  maxExampleLines: 5"},
		{"threshold above one", "scoring:\n  confidenceThreshold: 1.5"},
		{"negative weight", "scoring:\n  weights:\n    patterns: -0.1"},
		{"bad delay", "generation:\n  requestDelay: sometimes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}
