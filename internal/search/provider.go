package search

import (
	"context"
	"fmt"
)

// Result is one normalized search hit, identical across all backends
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider is the uniform adapter around one search backend.
// Adapters never retry internally; fallback and failure accounting belong to
// the router.
type Provider interface {
	// Name returns the provider identity used for quota tracking
	Name() string

	// Search runs one query and returns up to maxResults normalized hits.
	// Failures are always *ProviderError.
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// ErrorKind classifies provider failures for the router's fallback policy
type ErrorKind int

const (
	// KindRateLimited: backend said slow down; router moves on, counts a failure
	KindRateLimited ErrorKind = iota
	// KindUnauthorized: bad or missing credentials; provider is skipped for the run
	KindUnauthorized
	// KindUnreachable: network failure or server error; router moves on
	KindUnreachable
	// KindMalformed: response could not be parsed; provider is skipped for the run
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnreachable:
		return "unreachable"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ProviderError wraps a backend failure with its provider and classification
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status onto an error kind
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return KindRateLimited
	case status == 401 || status == 403:
		return KindUnauthorized
	case status >= 500:
		return KindUnreachable
	default:
		return KindMalformed
	}
}
