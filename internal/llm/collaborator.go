package llm

import (
	"context"

	"github.com/factseek/factseek/internal/model"
)

// Extractor is the external claim-extraction capability. Implementations may
// return an empty slice but must never return a partially populated claim:
// every returned claim carries a category.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]model.Claim, error)
}

// Judgement is the semantic comparison of a claim against evidence snippets
type Judgement string

const (
	Corroborates Judgement = "corroborates"
	Contradicts  Judgement = "contradicts"
	Inconclusive Judgement = "inconclusive"
)

// Judge is the external evidence-judgement capability: a pure function from
// the core's perspective. Transient failures are the caller's problem to
// retry; implementations do not retry internally.
type Judge interface {
	Judge(ctx context.Context, claimText string, snippets []string) (Judgement, error)
}

// Reformulator is the optional query-reformulation capability, consulted only
// when a claim's primary query returns nothing.
type Reformulator interface {
	Reformulate(ctx context.Context, claim model.Claim) (string, error)
}

// Config holds collaborator client configuration
type Config struct {
	APIKey    string
	BaseURL   string // OpenAI-compatible endpoint override
	Model     string
	Timeout   int // Seconds per call
	MaxTokens int
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Model:     c.Model,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}
