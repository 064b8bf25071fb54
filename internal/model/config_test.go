package model

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Providers.SerperLimit != 2500 || cfg.Providers.SearxLimit != 100 || cfg.Providers.BraveLimit != 66 {
		t.Errorf("Unexpected provider limits: %d/%d/%d",
			cfg.Providers.SerperLimit, cfg.Providers.SearxLimit, cfg.Providers.BraveLimit)
	}
	if !cfg.Providers.ScraperEnabled {
		t.Error("Expected scraper enabled by default")
	}

	// Fast mode keeps the three API providers and drops only the scraper
	if cfg.Verify.FastProviders != 3 {
		t.Errorf("Expected fast mode to keep 3 providers, got %d", cfg.Verify.FastProviders)
	}
	if cfg.Verify.FastMaxClaims != 3 {
		t.Errorf("Expected fast mode claim cap 3, got %d", cfg.Verify.FastMaxClaims)
	}

	if cfg.Reliability.HighRatio != 0.8 || cfg.Reliability.LowRatio != 0.3 {
		t.Errorf("Unexpected reliability thresholds: %f/%f",
			cfg.Reliability.HighRatio, cfg.Reliability.LowRatio)
	}
}
