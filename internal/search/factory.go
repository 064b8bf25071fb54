package search

import (
	"time"

	"github.com/factseek/factseek/internal/model"
)

// BuildRouter assembles the provider chain from configuration, in fixed
// priority order: serper, searxng, brave, scraper. Providers without
// credentials are left out entirely rather than registered and failing.
func BuildRouter(cfg *model.Config) *Router {
	tracker := NewTracker(cfg.Providers.UsageFile)
	timeout := cfg.HTTP.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var providers []Provider

	if cfg.Providers.SerperAPIKey != "" {
		tracker.Register("serper", cfg.Providers.SerperLimit, WindowMonthly)
		providers = append(providers, NewSerperProvider(cfg.Providers.SerperAPIKey, timeout))
	}
	if len(cfg.Providers.SearxInstances) > 0 {
		tracker.Register("searxng", cfg.Providers.SearxLimit, WindowDaily)
		providers = append(providers, NewSearxProvider(cfg.Providers.SearxInstances, cfg.HTTP.UserAgent, timeout))
	}
	if cfg.Providers.BraveAPIKey != "" {
		tracker.Register("brave", cfg.Providers.BraveLimit, WindowDaily)
		providers = append(providers, NewBraveProvider(cfg.Providers.BraveAPIKey, timeout))
	}
	if cfg.Providers.ScraperEnabled {
		tracker.Register("scraper", 0, WindowNone)
		providers = append(providers, NewScraperProvider(cfg.HTTP.UserAgent, timeout))
	}

	cacheTTL := time.Duration(0)
	if cfg.Cache.Enabled {
		cacheTTL = cfg.Cache.TTL
	}
	return NewRouter(providers, tracker, cacheTTL, cfg.Output.Verbose)
}
