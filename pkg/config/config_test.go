package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Port      int           `env:"SAMPLE_PORT" envDefault:"3001"`
	Origin    string        `env:"SAMPLE_ORIGIN" envDefault:"http://localhost:3000"`
	CacheTTL  time.Duration `env:"SAMPLE_CACHE_TTL" envDefault:"5m"`
	Platforms []string      `env:"SAMPLE_PLATFORMS" envDefault:"iOS,Android" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg sampleConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Origin)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"iOS", "Android"}, cfg.Platforms)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "8080")
	t.Setenv("SAMPLE_CACHE_TTL", "30s")

	var cfg sampleConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("FEEDR_SAMPLE_PORT", "9000")
	t.Setenv("SAMPLE_PORT", "1")

	var cfg sampleConfig
	require.NoError(t, LoadWithPrefix(&cfg, "FEEDR_"))

	assert.Equal(t, 9000, cfg.Port)
}

type requiredConfig struct {
	Secret string `env:"SAMPLE_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "not-a-number")

	var cfg sampleConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
