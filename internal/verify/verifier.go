package verify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/factseek/factseek/internal/llm"
	"github.com/factseek/factseek/internal/model"
	"github.com/factseek/factseek/internal/search"
)

// State is one phase of a claim's verification machine. Resolved is terminal.
type State string

const (
	StatePending   State = "pending"
	StateSearching State = "searching"
	StateScoring   State = "scoring"
	StateResolved  State = "resolved"
)

// Searcher is the slice of the search router the verifier depends on
type Searcher interface {
	Search(ctx context.Context, query string, maxResults, maxProviders int) (*search.Outcome, error)
}

const judgeAttempts = 2

// Verifier drives one claim at a time through pending → searching → scoring
// → resolved. Independent claims run their machines concurrently; the only
// state they share sits behind the Searcher.
type Verifier struct {
	searcher     Searcher
	judge        llm.Judge
	reformulator llm.Reformulator // Optional; nil disables the second query
	maxResults   int
	maxProviders int // 0 uses the full provider chain
	verbose      bool
}

// Options tunes a Verifier
type Options struct {
	MaxResults   int
	MaxProviders int
	Verbose      bool
}

// New creates a verifier. reformulator may be nil.
func New(searcher Searcher, judge llm.Judge, reformulator llm.Reformulator, opts Options) *Verifier {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Verifier{
		searcher:     searcher,
		judge:        judge,
		reformulator: reformulator,
		maxResults:   maxResults,
		maxProviders: opts.MaxProviders,
		verbose:      opts.Verbose,
	}
}

// Verify resolves one claim to a verdict. It never returns an error: search
// exhaustion, judge failure and deadline expiry all degrade to an
// unverifiable verdict so a single claim can never sink the report.
func (v *Verifier) Verify(ctx context.Context, claim model.Claim) model.Verdict {
	// pending → searching
	state := StateSearching
	v.logf("claim %d %s: %q\n", claim.ID, state, claim.Text)

	outcome, err := v.searcher.Search(ctx, claim.Text, v.maxResults, v.maxProviders)
	if err != nil {
		return v.abort(claim, err)
	}

	// Optional reformulated query, only when the primary one found nothing
	if outcome.Searched && len(outcome.Results) == 0 && v.reformulator != nil {
		if query, rerr := v.reformulator.Reformulate(ctx, claim); rerr == nil && query != "" && query != claim.Text {
			v.logf("claim %d reformulated query: %q\n", claim.ID, query)
			if second, serr := v.searcher.Search(ctx, query, v.maxResults, v.maxProviders); serr == nil && len(second.Results) > 0 {
				outcome = second
			} else if serr != nil {
				return v.abort(claim, serr)
			}
		}
	}

	// searching → scoring
	state = StateScoring
	v.logf("claim %d %s: %d result(s) via %s\n", claim.ID, state, len(outcome.Results), outcome.Provider)

	verdict := v.score(ctx, claim, outcome)

	state = StateResolved
	v.logf("claim %d %s: %s (%.2f)\n", claim.ID, state, verdict.Status, verdict.Confidence)
	return verdict
}

// score applies the deterministic resolution rules to a search outcome
func (v *Verifier) score(ctx context.Context, claim model.Claim, outcome *search.Outcome) model.Verdict {
	if !outcome.Searched {
		return model.Verdict{
			ClaimID:     claim.ID,
			Status:      model.StatusUnverifiable,
			Confidence:  0,
			Explanation: "No search provider was available: every configured backend was exhausted or failed, so the claim could not be checked.",
		}
	}
	if len(outcome.Results) == 0 {
		return model.Verdict{
			ClaimID:     claim.ID,
			Status:      model.StatusUnverifiable,
			Confidence:  0,
			Explanation: fmt.Sprintf("Searched via %s but found no sources mentioning this claim.", outcome.Provider),
		}
	}

	judgement, err := v.judgeWithRetry(ctx, claim.Text, snippets(outcome.Results))
	if err != nil {
		return model.Verdict{
			ClaimID:     claim.ID,
			Status:      model.StatusUnverifiable,
			Confidence:  0,
			Explanation: fmt.Sprintf("Evidence was found via %s but could not be judged: %v.", outcome.Provider, err),
			Sources:     sourceURLs(outcome.Results),
		}
	}

	sources := sourceURLs(outcome.Results)
	hosts := distinctHosts(sources)

	switch judgement {
	case llm.Corroborates:
		return model.Verdict{
			ClaimID:     claim.ID,
			Status:      model.StatusVerified,
			Confidence:  confidence(len(sources), hosts),
			Explanation: fmt.Sprintf("Corroborated by %d source(s) across %d domain(s), found via %s.", len(sources), hosts, outcome.Provider),
			Sources:     sources,
		}
	case llm.Contradicts:
		return model.Verdict{
			ClaimID:     claim.ID,
			Status:      model.StatusFalse,
			Confidence:  confidence(len(sources), hosts),
			Explanation: fmt.Sprintf("Contradicted by %d source(s) across %d domain(s), found via %s.", len(sources), hosts, outcome.Provider),
			Sources:     sources,
		}
	default:
		return model.Verdict{
			ClaimID:     claim.ID,
			Status:      model.StatusUnverifiable,
			Confidence:  0,
			Explanation: fmt.Sprintf("Found %d source(s) via %s, but the evidence neither supports nor contradicts the claim.", len(sources), outcome.Provider),
			Sources:     sources,
		}
	}
}

// abort resolves a claim whose search could not complete, distinguishing a
// blown deadline from other failures.
func (v *Verifier) abort(claim model.Claim, err error) model.Verdict {
	explanation := fmt.Sprintf("Verification could not complete: %v.", err)
	if errors.Is(err, context.DeadlineExceeded) {
		explanation = "Verification timed out before any provider answered; the claim was not checked."
	}
	return model.Verdict{
		ClaimID:     claim.ID,
		Status:      model.StatusUnverifiable,
		Confidence:  0,
		Explanation: explanation,
	}
}

// judgeWithRetry retries the external judge once on transient failure
func (v *Verifier) judgeWithRetry(ctx context.Context, claimText string, evidence []string) (llm.Judgement, error) {
	var judgement llm.Judgement
	var err error
	for attempt := 0; attempt < judgeAttempts; attempt++ {
		judgement, err = v.judge.Judge(ctx, claimText, evidence)
		if err == nil {
			return judgement, nil
		}
		if ctx.Err() != nil {
			return llm.Inconclusive, ctx.Err()
		}
	}
	return llm.Inconclusive, err
}

// confidence derives a verdict confidence from corroborating-source count and
// host diversity. Grows with both; a single-host evidence set is capped at
// 0.75 because duplicated reporting is weak corroboration.
func confidence(sources, hosts int) float64 {
	if sources == 0 {
		return 0
	}
	conf := 0.35 + 0.10*float64(sources) + 0.08*float64(hosts-1)
	ceiling := 1.0
	if hosts < 2 {
		ceiling = 0.75
	}
	if conf > ceiling {
		conf = ceiling
	}
	return conf
}

// sourceURLs returns the distinct result URLs in evidence order
func sourceURLs(results []search.Result) []string {
	seen := make(map[string]bool, len(results))
	var urls []string
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		urls = append(urls, r.URL)
	}
	return urls
}

// distinctHosts counts the unique hostnames across source URLs
func distinctHosts(urls []string) int {
	hosts := make(map[string]bool, len(urls))
	for _, raw := range urls {
		if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
			hosts[parsed.Host] = true
		}
	}
	return len(hosts)
}

// snippets flattens results into judgeable evidence lines
func snippets(results []search.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.Snippet != "" {
			out = append(out, fmt.Sprintf("%s: %s", r.Title, r.Snippet))
		} else {
			out = append(out, r.Title)
		}
	}
	return out
}

func (v *Verifier) logf(format string, args ...interface{}) {
	if v.verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
