package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/factseek/factseek/internal/model"
)

// OpenAIClient implements the Extractor, Judge and Reformulator contracts on
// top of any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	config Config
}

// NewOpenAIClient creates a collaborator client
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

const extractSystemPrompt = `You identify verifiable factual claims in text: statistics and numbers, historical facts and dates, quotes attributed to people, scientific claims, company and geographic facts. Opinions are not claims.

Respond with a JSON array, nothing else. Each element:
{"text": "<claim verbatim>", "category": "<historical|scientific|statistical|quotation|other>", "context": "<surrounding sentence, optional>"}

Return [] when the text contains no verifiable claims.`

// Extract identifies verifiable claims in the text, in document order
func (c *OpenAIClient) Extract(ctx context.Context, text string) ([]model.Claim, error) {
	content, err := c.complete(ctx, extractSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	var raw []struct {
		Text     string `json:"text"`
		Category string `json:"category"`
		Context  string `json:"context"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("extract claims: parse response: %w", err)
	}

	claims := make([]model.Claim, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		claims = append(claims, model.Claim{
			ID:       len(claims),
			Text:     strings.TrimSpace(item.Text),
			Category: model.ParseCategory(item.Category),
			Context:  strings.TrimSpace(item.Context),
		})
	}
	return claims, nil
}

const judgeSystemPrompt = `You compare one factual claim against evidence snippets from web search.

Answer with exactly one word:
- corroborates: the snippets support the claim
- contradicts: the snippets state something incompatible with the claim
- inconclusive: the snippets neither support nor contradict it`

// Judge compares a claim against evidence snippets
func (c *OpenAIClient) Judge(ctx context.Context, claimText string, snippets []string) (Judgement, error) {
	if len(snippets) == 0 {
		return Inconclusive, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Claim: %s\n\nEvidence:\n", claimText)
	for i, s := range snippets {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}

	content, err := c.complete(ctx, judgeSystemPrompt, sb.String())
	if err != nil {
		return Inconclusive, fmt.Errorf("judge claim: %w", err)
	}

	switch Judgement(strings.ToLower(strings.TrimSpace(content))) {
	case Corroborates:
		return Corroborates, nil
	case Contradicts:
		return Contradicts, nil
	case Inconclusive:
		return Inconclusive, nil
	default:
		return Inconclusive, fmt.Errorf("judge claim: unexpected answer %q", content)
	}
}

const reformulateSystemPrompt = `Rewrite the claim as a short web search query that would surface evidence for or against it. Respond with the query only.`

// Reformulate produces an alternative search query for a claim
func (c *OpenAIClient) Reformulate(ctx context.Context, claim model.Claim) (string, error) {
	content, err := c.complete(ctx, reformulateSystemPrompt, claim.Text)
	if err != nil {
		return "", fmt.Errorf("reformulate query: %w", err)
	}
	return strings.Trim(strings.TrimSpace(content), `"`), nil
}

// complete runs one chat completion with the configured model and timeout
func (c *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	modelName := c.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	maxTokens := c.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}
	timeout := time.Duration(c.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON in one
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
