package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig()
	if assert.NoError(t, err) {
		assert.Equal(t, 8000, cfg.Port)
		assert.Equal(t, "./static/bidder-info", cfg.BidderInfoDir)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("PBS_PORT", "0")
	defer os.Unsetenv("PBS_PORT")

	_, err := loadConfig()
	assert.Error(t, err, "a zero port should not pass validation")
}

func TestServeFailsWithoutBidderInfo(t *testing.T) {
	cfg, err := loadConfig()
	if !assert.NoError(t, err) {
		return
	}
	cfg.BidderInfoDir = "./no-such-dir"

	assert.Error(t, serve("", "", cfg))
}
