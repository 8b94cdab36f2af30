package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, 60*time.Second, cfg.Window)
	assert.Equal(t, 60*time.Second, cfg.SweepInterval)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := DefaultConfig()

	zeroLimit := base
	zeroLimit.Limit = 0
	assert.Error(t, zeroLimit.Validate())

	noWindow := base
	noWindow.Window = 0
	assert.Error(t, noWindow.Validate())

	noSweep := base
	noSweep.SweepInterval = -time.Second
	assert.Error(t, noSweep.Validate())
}
