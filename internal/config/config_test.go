package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/u/x/y", expandHome("~/x/y", "/home/u"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path", "/home/u"))
	assert.Equal(t, "~", expandHome("~", "/home/u"))
}

func TestLimitsCarryConfiguredValues(t *testing.T) {
	cfg := &Config{
		MaxScanBytes:     1024,
		MaxEvents:        10,
		MaxObjects:       5,
		SearchTextBudget: 100,
	}
	lim := cfg.Limits()
	assert.Equal(t, 1024, lim.MaxScanBytes)
	assert.Equal(t, 10, lim.MaxEvents)
	assert.Equal(t, 5, lim.MaxObjects)
	assert.Equal(t, 100, lim.SearchTextBudget)
}
