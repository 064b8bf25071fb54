package report

import (
	"strings"
	"testing"

	"github.com/factseek/factseek/internal/model"
)

func buildReport(t *testing.T, statuses ...model.VerdictStatus) *model.Report {
	t.Helper()

	claims := make([]model.Claim, len(statuses))
	verdicts := make([]model.Verdict, len(statuses))
	for i, s := range statuses {
		claims[i] = model.Claim{ID: i + 1, Text: "claim"}
		verdicts[i] = model.Verdict{ClaimID: i + 1, Status: s}
	}

	agg := NewAggregator(model.ReliabilityConfig{HighRatio: 0.8, LowRatio: 0.3})
	r, err := agg.Build("fc_test", "some text", false, claims, verdicts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return r
}

func TestBuild_CountsMatchVerdicts(t *testing.T) {
	r := buildReport(t,
		model.StatusVerified,
		model.StatusVerified,
		model.StatusFalse,
		model.StatusUnverifiable,
	)

	c := r.CountVerdicts()
	if c.Verified != 2 || c.False != 1 || c.Unverifiable != 1 {
		t.Errorf("Unexpected counts: %+v", c)
	}
	if c.Total() != len(r.Claims) {
		t.Errorf("Expected counts to sum to %d claims, got %d", len(r.Claims), c.Total())
	}
}

func TestBuild_RejectsMismatchedLengths(t *testing.T) {
	agg := NewAggregator(model.ReliabilityConfig{})
	claims := []model.Claim{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}
	verdicts := []model.Verdict{{ClaimID: 1}}

	if _, err := agg.Build("fc_x", "text", false, claims, verdicts); err == nil {
		t.Error("Expected error for mismatched claims/verdicts")
	}
}

func TestBuild_EmptyClaims(t *testing.T) {
	r := buildReport(t)

	if !r.NoClaims {
		t.Error("Expected NoClaims=true for empty report")
	}
	if r.Reliability != model.ReliabilityLow {
		t.Errorf("Expected empty report graded low, got %s", r.Reliability)
	}
	if !strings.Contains(r.Summary, "No verifiable claims") {
		t.Errorf("Unexpected summary: %s", r.Summary)
	}
}

func TestGrade_High(t *testing.T) {
	// 4/5 verified, zero false
	r := buildReport(t,
		model.StatusVerified,
		model.StatusVerified,
		model.StatusVerified,
		model.StatusVerified,
		model.StatusUnverifiable,
	)
	if r.Reliability != model.ReliabilityHigh {
		t.Errorf("Expected high, got %s", r.Reliability)
	}
}

func TestGrade_SingleFalseBlocksHigh(t *testing.T) {
	// 9/10 verified but one false claim
	statuses := make([]model.VerdictStatus, 10)
	for i := range statuses {
		statuses[i] = model.StatusVerified
	}
	statuses[9] = model.StatusFalse

	r := buildReport(t, statuses...)
	if r.Reliability == model.ReliabilityHigh {
		t.Error("Expected a false claim to block a high grade")
	}
}

func TestGrade_LowOnFalseRatio(t *testing.T) {
	// 2 false out of 5 clears the 0.3 threshold
	r := buildReport(t,
		model.StatusVerified,
		model.StatusVerified,
		model.StatusVerified,
		model.StatusFalse,
		model.StatusFalse,
	)
	if r.Reliability != model.ReliabilityLow {
		t.Errorf("Expected low, got %s", r.Reliability)
	}
}

func TestGrade_LowWhenFalseOutnumbersVerified(t *testing.T) {
	r := buildReport(t,
		model.StatusFalse,
		model.StatusUnverifiable,
		model.StatusUnverifiable,
		model.StatusUnverifiable,
		model.StatusUnverifiable,
	)
	// 1/5 false is under the ratio threshold, but false > verified
	if r.Reliability != model.ReliabilityLow {
		t.Errorf("Expected low, got %s", r.Reliability)
	}
}

func TestGrade_Medium(t *testing.T) {
	r := buildReport(t,
		model.StatusVerified,
		model.StatusVerified,
		model.StatusUnverifiable,
		model.StatusUnverifiable,
	)
	if r.Reliability != model.ReliabilityMedium {
		t.Errorf("Expected medium, got %s", r.Reliability)
	}
}

func TestSummary_ReflectsCounts(t *testing.T) {
	r := buildReport(t, model.StatusVerified, model.StatusFalse)
	if !strings.Contains(r.Summary, "2 claim(s)") {
		t.Errorf("Expected claim count in summary, got: %s", r.Summary)
	}
	if !strings.Contains(r.Summary, "1 verified, 1 false") {
		t.Errorf("Expected verdict breakdown in summary, got: %s", r.Summary)
	}
}

func TestFingerprint_StableUnderWhitespace(t *testing.T) {
	a := Fingerprint("The  Eiffel Tower\n is 330 metres tall.", false)
	b := Fingerprint("The Eiffel Tower is 330 metres tall.", false)
	if a != b {
		t.Errorf("Expected whitespace-normalized texts to share an id: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "fc_") {
		t.Errorf("Expected fc_ prefix, got %s", a)
	}
}

func TestFingerprint_DistinguishesTextAndMode(t *testing.T) {
	base := Fingerprint("some text", false)
	if Fingerprint("other text", false) == base {
		t.Error("Expected different texts to produce different ids")
	}
	if Fingerprint("some text", true) == base {
		t.Error("Expected fast mode to produce a different id for the same text")
	}
}

func TestNewAggregator_DefaultsOnInvalidThresholds(t *testing.T) {
	agg := NewAggregator(model.ReliabilityConfig{HighRatio: 0, LowRatio: 2})
	if agg.highRatio != 0.8 || agg.lowRatio != 0.3 {
		t.Errorf("Expected defaults 0.8/0.3, got %f/%f", agg.highRatio, agg.lowRatio)
	}
}
