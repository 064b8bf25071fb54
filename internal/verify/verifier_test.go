package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/factseek/factseek/internal/llm"
	"github.com/factseek/factseek/internal/model"
	"github.com/factseek/factseek/internal/search"
)

// stubSearcher returns a scripted outcome per query
type stubSearcher struct {
	outcomes map[string]*search.Outcome
	fallback *search.Outcome
	err      error
	calls    int
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults, maxProviders int) (*search.Outcome, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if out, ok := s.outcomes[query]; ok {
		return out, nil
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return &search.Outcome{Query: query, Searched: true}, nil
}

// stubJudge answers with a fixed judgement, optionally failing first
type stubJudge struct {
	judgement llm.Judgement
	failures  int
	calls     int
}

func (j *stubJudge) Judge(ctx context.Context, claimText string, snippets []string) (llm.Judgement, error) {
	j.calls++
	if j.failures > 0 {
		j.failures--
		return llm.Inconclusive, errors.New("transient judge failure")
	}
	return j.judgement, nil
}

type stubReformulator struct {
	query string
	calls int
}

func (r *stubReformulator) Reformulate(ctx context.Context, claim model.Claim) (string, error) {
	r.calls++
	return r.query, nil
}

func testClaim() model.Claim {
	return model.Claim{ID: 1, Text: "The Eiffel Tower is 330 metres tall", Category: model.CategoryStatistical}
}

func multiHostOutcome() *search.Outcome {
	return &search.Outcome{
		Searched: true,
		Provider: "serper",
		Results: []search.Result{
			{Title: "a", URL: "https://en.wikipedia.org/wiki/Eiffel_Tower", Snippet: "330 m"},
			{Title: "b", URL: "https://toureiffel.paris/en", Snippet: "330 metres"},
		},
	}
}

func TestVerify_CorroboratedClaim(t *testing.T) {
	searcher := &stubSearcher{fallback: multiHostOutcome()}
	v := New(searcher, &stubJudge{judgement: llm.Corroborates}, nil, Options{})

	verdict := v.Verify(context.Background(), testClaim())

	if verdict.Status != model.StatusVerified {
		t.Fatalf("Expected verified, got %s", verdict.Status)
	}
	if verdict.Confidence <= 0 {
		t.Errorf("Expected positive confidence, got %f", verdict.Confidence)
	}
	if verdict.ClaimID != 1 {
		t.Errorf("Expected claim ID carried through, got %d", verdict.ClaimID)
	}
	if len(verdict.Sources) != 2 {
		t.Errorf("Expected 2 sources, got %d", len(verdict.Sources))
	}
}

func TestVerify_ContradictedClaim(t *testing.T) {
	searcher := &stubSearcher{fallback: multiHostOutcome()}
	v := New(searcher, &stubJudge{judgement: llm.Contradicts}, nil, Options{})

	verdict := v.Verify(context.Background(), model.Claim{ID: 2, Text: "The moon is made of cheese"})

	if verdict.Status != model.StatusFalse {
		t.Fatalf("Expected false, got %s", verdict.Status)
	}
	if verdict.Confidence <= 0 {
		t.Errorf("Expected positive confidence for a contradicted claim, got %f", verdict.Confidence)
	}
}

func TestVerify_InconclusiveEvidence(t *testing.T) {
	searcher := &stubSearcher{fallback: multiHostOutcome()}
	v := New(searcher, &stubJudge{judgement: llm.Inconclusive}, nil, Options{})

	verdict := v.Verify(context.Background(), testClaim())

	if verdict.Status != model.StatusUnverifiable {
		t.Fatalf("Expected unverifiable, got %s", verdict.Status)
	}
	if verdict.Confidence != 0 {
		t.Errorf("Expected zero confidence, got %f", verdict.Confidence)
	}
	if len(verdict.Sources) == 0 {
		t.Error("Expected inconclusive verdict to keep its sources")
	}
}

func TestVerify_NoResults(t *testing.T) {
	searcher := &stubSearcher{fallback: &search.Outcome{Searched: true, Provider: "serper"}}
	judge := &stubJudge{judgement: llm.Corroborates}
	v := New(searcher, judge, nil, Options{})

	verdict := v.Verify(context.Background(), testClaim())

	if verdict.Status != model.StatusUnverifiable {
		t.Fatalf("Expected unverifiable, got %s", verdict.Status)
	}
	if judge.calls != 0 {
		t.Errorf("Expected judge not consulted without evidence, got %d calls", judge.calls)
	}
}

func TestVerify_NoProviderAvailable(t *testing.T) {
	searcher := &stubSearcher{fallback: &search.Outcome{Searched: false}}
	v := New(searcher, &stubJudge{judgement: llm.Corroborates}, nil, Options{})

	verdict := v.Verify(context.Background(), testClaim())

	if verdict.Status != model.StatusUnverifiable {
		t.Fatalf("Expected unverifiable, got %s", verdict.Status)
	}
	if verdict.Confidence != 0 {
		t.Errorf("Expected zero confidence, got %f", verdict.Confidence)
	}
}

func TestVerify_SearchErrorDegrades(t *testing.T) {
	searcher := &stubSearcher{err: context.DeadlineExceeded}
	v := New(searcher, &stubJudge{judgement: llm.Corroborates}, nil, Options{})

	verdict := v.Verify(context.Background(), testClaim())

	if verdict.Status != model.StatusUnverifiable {
		t.Fatalf("Expected unverifiable on timeout, got %s", verdict.Status)
	}
	if !strings.Contains(verdict.Explanation, "timed out") {
		t.Errorf("Expected timeout explanation, got %q", verdict.Explanation)
	}
}

func TestVerify_JudgeRetriedOnce(t *testing.T) {
	searcher := &stubSearcher{fallback: multiHostOutcome()}
	judge := &stubJudge{judgement: llm.Corroborates, failures: 1}
	v := New(searcher, judge, nil, Options{})

	verdict := v.Verify(context.Background(), testClaim())

	if verdict.Status != model.StatusVerified {
		t.Fatalf("Expected verified after retry, got %s", verdict.Status)
	}
	if judge.calls != 2 {
		t.Errorf("Expected 2 judge calls, got %d", judge.calls)
	}
}

func TestVerify_JudgeFailureExhaustsRetries(t *testing.T) {
	searcher := &stubSearcher{fallback: multiHostOutcome()}
	judge := &stubJudge{judgement: llm.Corroborates, failures: 10}
	v := New(searcher, judge, nil, Options{})

	verdict := v.Verify(context.Background(), testClaim())

	if verdict.Status != model.StatusUnverifiable {
		t.Fatalf("Expected unverifiable after judge failures, got %s", verdict.Status)
	}
	if len(verdict.Sources) == 0 {
		t.Error("Expected sources retained even when judging failed")
	}
}

func TestVerify_ReformulatedQueryOnEmptyResults(t *testing.T) {
	claim := testClaim()
	searcher := &stubSearcher{
		outcomes: map[string]*search.Outcome{
			claim.Text:            {Searched: true, Provider: "serper"},
			"eiffel tower height": multiHostOutcome(),
		},
	}
	reformulator := &stubReformulator{query: "eiffel tower height"}
	v := New(searcher, &stubJudge{judgement: llm.Corroborates}, reformulator, Options{})

	verdict := v.Verify(context.Background(), claim)

	if reformulator.calls != 1 {
		t.Errorf("Expected 1 reformulation, got %d", reformulator.calls)
	}
	if searcher.calls != 2 {
		t.Errorf("Expected 2 searches, got %d", searcher.calls)
	}
	if verdict.Status != model.StatusVerified {
		t.Errorf("Expected verified via reformulated query, got %s", verdict.Status)
	}
}

func TestVerify_NoReformulationWhenResultsExist(t *testing.T) {
	searcher := &stubSearcher{fallback: multiHostOutcome()}
	reformulator := &stubReformulator{query: "other"}
	v := New(searcher, &stubJudge{judgement: llm.Corroborates}, reformulator, Options{})

	v.Verify(context.Background(), testClaim())

	if reformulator.calls != 0 {
		t.Errorf("Expected no reformulation when the first search had results, got %d", reformulator.calls)
	}
}

func TestConfidence(t *testing.T) {
	if got := confidence(0, 0); got != 0 {
		t.Errorf("Expected zero confidence without sources, got %f", got)
	}

	// More sources never lowers confidence
	prev := 0.0
	for sources := 1; sources <= 8; sources++ {
		c := confidence(sources, 2)
		if c < prev {
			t.Errorf("Confidence dropped from %f to %f at %d sources", prev, c, sources)
		}
		prev = c
	}

	// Single-host evidence caps out below multi-host evidence
	single := confidence(10, 1)
	if single > 0.75 {
		t.Errorf("Expected single-host confidence capped at 0.75, got %f", single)
	}
	multi := confidence(10, 5)
	if multi <= single {
		t.Errorf("Expected multi-host confidence above single-host, got %f vs %f", multi, single)
	}
	if multi > 1.0 {
		t.Errorf("Confidence exceeded 1.0: %f", multi)
	}
}

func TestSourceURLs_Deduplicates(t *testing.T) {
	results := []search.Result{
		{URL: "https://a.example/1"},
		{URL: "https://a.example/1"},
		{URL: "https://b.example/2"},
		{URL: ""},
	}
	urls := sourceURLs(results)
	if len(urls) != 2 {
		t.Fatalf("Expected 2 distinct URLs, got %d", len(urls))
	}
	if urls[0] != "https://a.example/1" || urls[1] != "https://b.example/2" {
		t.Errorf("Expected evidence order preserved, got %v", urls)
	}
}

func TestDistinctHosts(t *testing.T) {
	urls := []string{
		"https://en.wikipedia.org/wiki/A",
		"https://en.wikipedia.org/wiki/B",
		"https://toureiffel.paris/en",
		"not a url",
	}
	if got := distinctHosts(urls); got != 2 {
		t.Errorf("Expected 2 distinct hosts, got %d", got)
	}
}
