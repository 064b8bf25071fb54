package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Outcome is the result of one routed search. Searched distinguishes
// "we searched and found nothing" from "no provider could be reached":
// only the former counts as evidence of absence.
type Outcome struct {
	Query    string
	Results  []Result
	Provider string // Provider that produced the results
	Searched bool   // At least one provider completed a search
	Cached   bool   // Served from the query cache, no provider call made
}

// Router dispatches queries across providers in priority order, reserving
// quota before each call and falling back on failure. First success wins;
// results are never merged across providers.
type Router struct {
	providers []Provider
	tracker   *Tracker
	cache     *gocache.Cache // nil when caching is disabled
	verbose   bool

	mu            sync.Mutex
	misconfigured map[string]bool // Unauthorized/Malformed providers, skipped for the run
}

// NewRouter creates a router over providers in priority order. Each provider
// must already be registered with the tracker.
func NewRouter(providers []Provider, tracker *Tracker, cacheTTL time.Duration, verbose bool) *Router {
	var qc *gocache.Cache
	if cacheTTL > 0 {
		qc = gocache.New(cacheTTL, 10*time.Minute)
	}
	return &Router{
		providers:     providers,
		tracker:       tracker,
		cache:         qc,
		verbose:       verbose,
		misconfigured: make(map[string]bool),
	}
}

// Search runs the query through the provider chain. maxProviders > 0 limits
// the chain to the first n providers (fast mode); 0 uses all of them.
// Exhausting every provider is not an error: the caller receives an outcome
// with Searched=false and decides what that means.
func (r *Router) Search(ctx context.Context, query string, maxResults, maxProviders int) (*Outcome, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	key := queryKey(query, maxResults)
	if r.cache != nil {
		if hit, found := r.cache.Get(key); found {
			cached := hit.(*Outcome)
			return &Outcome{
				Query:    query,
				Results:  cached.Results,
				Provider: cached.Provider,
				Searched: true,
				Cached:   true,
			}, nil
		}
	}

	chain := r.providers
	if maxProviders > 0 && maxProviders < len(chain) {
		chain = chain[:maxProviders]
	}

	for _, p := range chain {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if r.isMisconfigured(p.Name()) {
			continue
		}
		if !r.tracker.TryReserve(p.Name()) {
			// Quota exhausted: skip, but not a failure
			r.logf("%s quota exhausted, trying next provider\n", p.Name())
			continue
		}

		results, err := p.Search(ctx, query, maxResults)
		if err != nil {
			r.handleFailure(p.Name(), err)
			continue
		}

		out := &Outcome{
			Query:    query,
			Results:  results,
			Provider: p.Name(),
			Searched: true,
		}
		if r.cache != nil && len(results) > 0 {
			r.cache.Set(key, out, gocache.DefaultExpiration)
		}
		return out, nil
	}

	// Every provider was skipped or failed
	return &Outcome{Query: query, Searched: false}, nil
}

// handleFailure applies the fallback policy for one failed provider call.
// Transient kinds count a failure and refund the quota; misconfiguration
// kinds retire the provider for the remainder of the run.
func (r *Router) handleFailure(provider string, err error) {
	var perr *ProviderError
	if errors.As(err, &perr) {
		switch perr.Kind {
		case KindUnauthorized, KindMalformed:
			r.mu.Lock()
			r.misconfigured[provider] = true
			r.mu.Unlock()
			r.logf("%s considered misconfigured (%s), skipping for this run\n", provider, perr.Kind)
			return
		}
	}

	r.tracker.RecordFailure(provider)
	r.logf("%s failed (%v), trying next provider\n", provider, err)
}

func (r *Router) isMisconfigured(provider string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.misconfigured[provider]
}

// Providers returns the configured chain length, used by fast-mode capping
func (r *Router) Providers() int {
	return len(r.providers)
}

// Usage exposes the tracker status for verbose output
func (r *Router) Usage() map[string]UsageStatus {
	return r.tracker.Status()
}

func (r *Router) logf(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// queryKey derives a stable cache key for a query
func queryKey(query string, maxResults int) string {
	payload, _ := json.Marshal(struct {
		Q string `json:"q"`
		N int    `json:"n"`
	}{query, maxResults})
	sum := sha256.Sum256(payload)
	return "search:v1:" + hex.EncodeToString(sum[:])
}
