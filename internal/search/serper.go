package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const serperEndpoint = "https://google.serper.dev/search"

// SerperProvider adapts the Serper.dev Google search API
type SerperProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSerperProvider creates a Serper adapter
func NewSerperProvider(apiKey string, timeout time.Duration) *SerperProvider {
	return &SerperProvider{
		apiKey:   apiKey,
		endpoint: serperEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *SerperProvider) Name() string {
	return "serper"
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search queries Serper and normalizes the organic results
func (p *SerperProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	payload, err := json.Marshal(serperRequest{Q: query, Num: maxResults})
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindMalformed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindMalformed, Err: err}
	}
	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindUnreachable, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: p.Name(),
			Kind:     classifyStatus(resp.StatusCode),
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2_000_000))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindUnreachable, Err: err}
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindMalformed, Err: err}
	}

	results := make([]Result, 0, len(parsed.Organic))
	for _, item := range parsed.Organic {
		if item.Link == "" {
			continue
		}
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
