package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// SearxProvider adapts a SearXNG metasearch endpoint. Multiple instances can
// be configured; the provider rotates to the next one after a failed call so
// a single dead public instance does not retire the provider.
type SearxProvider struct {
	instances []string
	client    *http.Client
	userAgent string

	mu  sync.Mutex
	idx int
}

// NewSearxProvider creates a SearXNG adapter over the given instances
func NewSearxProvider(instances []string, userAgent string, timeout time.Duration) *SearxProvider {
	return &SearxProvider{
		instances: instances,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (p *SearxProvider) Name() string {
	return "searxng"
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search queries the current SearXNG instance in JSON mode
func (p *SearxProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	instance := p.current()
	if instance == "" {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindUnreachable, Err: fmt.Errorf("no instances configured")}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("engines", "google,bing,duckduckgo")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, instance+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindMalformed, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.rotate()
		return nil, &ProviderError{Provider: p.Name(), Kind: KindUnreachable, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		p.rotate()
		kind := classifyStatus(resp.StatusCode)
		if kind == KindMalformed {
			// Public instances answer odd statuses when overloaded; treat as
			// transient rather than retiring the whole provider.
			kind = KindUnreachable
		}
		return nil, &ProviderError{Provider: p.Name(), Kind: kind, Err: fmt.Errorf("instance %s status %d", instance, resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2_000_000))
	if err != nil {
		p.rotate()
		return nil, &ProviderError{Provider: p.Name(), Kind: KindUnreachable, Err: err}
	}

	var parsed searxResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		p.rotate()
		return nil, &ProviderError{Provider: p.Name(), Kind: KindMalformed, Err: err}
	}

	results := make([]Result, 0, maxResults)
	for _, item := range parsed.Results {
		if item.URL == "" {
			continue
		}
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.URL,
			Snippet: item.Content,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}

func (p *SearxProvider) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.instances) == 0 {
		return ""
	}
	return p.instances[p.idx]
}

func (p *SearxProvider) rotate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.instances) > 1 {
		p.idx = (p.idx + 1) % len(p.instances)
	}
}
