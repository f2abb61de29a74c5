package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.DefaultTrials)
	assert.Equal(t, 1, cfg.PrepareInterval)
	assert.True(t, cfg.InvertB)
	assert.Zero(t, cfg.ThetaA)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QSIM_PORT", "9100")
	t.Setenv("QSIM_TRIALS", "500")
	t.Setenv("QSIM_INVERT", "false")
	t.Setenv("QSIM_THETA_A", "45.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 500, cfg.DefaultTrials)
	assert.False(t, cfg.InvertB)
	assert.InDelta(t, 45.5, cfg.ThetaA, 1e-12)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: 8001, DefaultTrials: 100, PrepareInterval: 1}
	assert.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.DefaultTrials = -1
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.PrepareInterval = 0
	assert.Error(t, bad.Validate())
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("QSIM_PORT", "not-a-number")
	t.Setenv("QSIM_INVERT", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.True(t, cfg.InvertB)
}
