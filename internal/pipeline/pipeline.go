package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/factseek/factseek/internal/history"
	"github.com/factseek/factseek/internal/llm"
	"github.com/factseek/factseek/internal/model"
	"github.com/factseek/factseek/internal/report"
	"github.com/factseek/factseek/internal/search"
	"github.com/factseek/factseek/internal/verify"
	"github.com/factseek/factseek/internal/worker"
)

// statisticMaxLen caps single-statistic checks; longer text belongs in CheckText
const statisticMaxLen = 500

// ErrStatisticTooLong is returned by CheckStatistic for oversized input
var ErrStatisticTooLong = fmt.Errorf("statistic too long (max %d characters), use a full check instead", statisticMaxLen)

// Deps are the pipeline's collaborators. Searcher and Store are required;
// Reformulator may be nil.
type Deps struct {
	Extractor    llm.Extractor
	Judge        llm.Judge
	Reformulator llm.Reformulator
	Searcher     verify.Searcher
	Store        history.Store
}

// Pipeline orchestrates a fact-check run: cache lookup, claim extraction,
// concurrent per-claim verification, aggregation, persistence.
type Pipeline struct {
	deps       Deps
	aggregator *report.Aggregator
	cfg        *model.Config
}

// New creates a pipeline over explicit collaborators
func New(cfg *model.Config, deps Deps) *Pipeline {
	return &Pipeline{
		deps:       deps,
		aggregator: report.NewAggregator(cfg.Reliability),
		cfg:        cfg,
	}
}

// NewFromConfig wires the production collaborators: the provider router, the
// OpenAI extractor/judge, and the badger history store.
func NewFromConfig(cfg *model.Config) (*Pipeline, error) {
	client, err := llm.NewOpenAIClient(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init collaborator: %w", err)
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	return New(cfg, Deps{
		Extractor:    client,
		Judge:        client,
		Reformulator: client,
		Searcher:     search.BuildRouter(cfg),
		Store:        store,
	}), nil
}

// Close releases the history store
func (p *Pipeline) Close() error {
	return p.deps.Store.Close()
}

// CheckText runs the full fact-check on raw text. Identical input with an
// existing stored report is a cache hit: the stored report is returned
// unchanged and no provider is called. Extraction failure is the only hard
// error; everything after extraction degrades into verdict states.
func (p *Pipeline) CheckText(ctx context.Context, text string, fast bool) (*model.Report, error) {
	id := report.Fingerprint(text, fast)

	if cached, err := p.cachedReport(id); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	claims, err := p.deps.Extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	if fast && p.cfg.Verify.FastMaxClaims > 0 && len(claims) > p.cfg.Verify.FastMaxClaims {
		claims = claims[:p.cfg.Verify.FastMaxClaims]
	}
	p.logf("extracted %d claim(s)\n", len(claims))

	verdicts := p.verifyAll(ctx, claims, fast)

	rep, err := p.aggregator.Build(id, text, fast, claims, verdicts)
	if err != nil {
		return nil, err
	}
	p.persist(rep)
	return rep, nil
}

// CheckStatistic verifies one standalone statistic, bypassing extraction.
// The synthesized claim is statistical by definition and runs through the
// same verifier as extracted claims.
func (p *Pipeline) CheckStatistic(ctx context.Context, statistic, contextText string, year int) (*model.Report, error) {
	statistic = strings.TrimSpace(statistic)
	if statistic == "" {
		return nil, fmt.Errorf("statistic is empty")
	}
	if len(statistic) > statisticMaxLen {
		return nil, ErrStatisticTooLong
	}

	text := statistic
	if year > 0 {
		text = fmt.Sprintf("%s (as of %d)", statistic, year)
	}

	id := report.Fingerprint(text, false)
	if cached, err := p.cachedReport(id); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	claims := []model.Claim{{
		ID:       0,
		Text:     text,
		Category: model.CategoryStatistical,
		Context:  strings.TrimSpace(contextText),
	}}

	verdicts := p.verifyAll(ctx, claims, false)

	rep, err := p.aggregator.Build(id, text, false, claims, verdicts)
	if err != nil {
		return nil, err
	}
	p.persist(rep)
	return rep, nil
}

// cachedReport consults the store for an existing report with this identity.
// Returns (nil, nil) on a miss or when caching is disabled.
func (p *Pipeline) cachedReport(id string) (*model.Report, error) {
	if !p.cfg.Cache.Enabled {
		return nil, nil
	}
	cached, err := p.deps.Store.Get(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("history lookup: %w", err)
	}
	p.logf("cache hit: report %s\n", id)
	return cached, nil
}

// GetReport serves a stored report by id (history.ErrNotFound on a miss)
func (p *Pipeline) GetReport(id string) (*model.Report, error) {
	return p.deps.Store.Get(id)
}

// ListReports serves stored report summaries, newest first
func (p *Pipeline) ListReports() ([]model.ReportSummary, error) {
	return p.deps.Store.List()
}

// verifyAll runs every claim's state machine concurrently and reassembles the
// verdicts in claim order. Each claim carries its own deadline, so one slow
// provider cannot stall unrelated claims or the report.
func (p *Pipeline) verifyAll(ctx context.Context, claims []model.Claim, fast bool) []model.Verdict {
	verdicts := make([]model.Verdict, len(claims))
	if len(claims) == 0 {
		return verdicts
	}

	maxProviders := 0
	if fast {
		maxProviders = p.cfg.Verify.FastProviders
	}
	verifier := verify.New(p.deps.Searcher, p.deps.Judge, p.deps.Reformulator, verify.Options{
		MaxResults:   p.cfg.Providers.MaxResults,
		MaxProviders: maxProviders,
		Verbose:      p.cfg.Output.Verbose,
	})

	pool := worker.NewPool(p.cfg.Verify.Workers, len(claims))
	pool.Start()
	for i := range claims {
		pool.Submit(&claimJob{
			idx:      i,
			claim:    claims[i],
			verifier: verifier,
			parent:   ctx,
			deadline: p.cfg.Verify.ClaimDeadline,
		})
	}

	for _, res := range pool.Wait() {
		cr := res.(*claimResult)
		verdicts[cr.idx] = cr.verdict
	}
	return verdicts
}

// persist writes the report to the history store. A failed write is warned
// about, never fatal: the report was produced and the caller gets it.
func (p *Pipeline) persist(rep *model.Report) {
	if err := p.deps.Store.Put(rep); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not persist report %s: %v\n", rep.ID, err)
	}
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
