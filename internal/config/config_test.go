package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "medml", cfg.Database.Database)
	require.Equal(t, "models_store", cfg.Models.Dir)
	require.Equal(t, "v1.0", cfg.Models.Version)
	require.Equal(t, 15, cfg.JWT.AccessTTLMin)
}

func TestRiskThresholdDefaults(t *testing.T) {
	cfg := Load()
	medium, high := cfg.RiskThresholds()
	require.Equal(t, DefaultMediumThreshold, medium)
	require.Equal(t, DefaultHighThreshold, high)
}

func TestRiskThresholdsReadEnvPerCall(t *testing.T) {
	cfg := Load()

	t.Setenv("RISK_MEDIUM_THRESHOLD", "0.25")
	t.Setenv("RISK_HIGH_THRESHOLD", "0.60")
	medium, high := cfg.RiskThresholds()
	require.Equal(t, 0.25, medium)
	require.Equal(t, 0.60, high)

	// Garbage falls back to defaults instead of breaking categorization.
	t.Setenv("RISK_MEDIUM_THRESHOLD", "not-a-number")
	medium, _ = cfg.RiskThresholds()
	require.Equal(t, DefaultMediumThreshold, medium)
}

func TestGetDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p",
		Database: "medml", SSLMode: "disable",
	}
	require.Equal(t,
		"host=db port=5433 user=u password=p dbname=medml sslmode=disable",
		c.GetDSN())
}
