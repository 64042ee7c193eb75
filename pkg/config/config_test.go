package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetDefaultValues(t *testing.T) {
	globalConfig = Config{}
	setDefaultValues()

	cfg := GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 30, cfg.RateLimit.SoftThreshold)
	assert.Equal(t, 100, cfg.RateLimit.AbuseThreshold)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, time.Hour, cfg.RateLimit.BlacklistDuration())
	assert.Equal(t, "CF-Connecting-IP", cfg.RateLimit.TrustedProxyHeader)
	// Metrics default on; only an explicit metrics.enabled=false turns
	// the listener off.
	assert.True(t, cfg.Metrics.Enabled)
}

func TestSetDefaultValuesKeepsExplicitValues(t *testing.T) {
	globalConfig = Config{}
	globalConfig.Server.Port = 3000
	globalConfig.RateLimit.SoftThreshold = 5
	setDefaultValues()

	cfg := GetConfig()
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.RateLimit.SoftThreshold)
	assert.Equal(t, 100, cfg.RateLimit.AbuseThreshold)
}
