package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/factseek/factseek/internal/model"
)

// Aggregator combines per-claim verdicts into a report and grades it.
// The grading rule is deterministic and reproducible: the same verdicts
// always yield the same reliability.
type Aggregator struct {
	highRatio float64
	lowRatio  float64
	now       func() time.Time
}

// NewAggregator creates an aggregator with the given grading thresholds.
// Defaults (0.8 / 0.3) apply when a threshold is out of range.
func NewAggregator(cfg model.ReliabilityConfig) *Aggregator {
	high := cfg.HighRatio
	if high <= 0 || high > 1 {
		high = 0.8
	}
	low := cfg.LowRatio
	if low <= 0 || low > 1 {
		low = 0.3
	}
	return &Aggregator{highRatio: high, lowRatio: low, now: time.Now}
}

// Build assembles the report for one fact-check run. Claims and verdicts must
// already be index-aligned; the aggregator refuses to paper over a mismatch.
func (a *Aggregator) Build(id, originalText string, fastMode bool, claims []model.Claim, verdicts []model.Verdict) (*model.Report, error) {
	if len(claims) != len(verdicts) {
		return nil, fmt.Errorf("claim/verdict mismatch: %d claims, %d verdicts", len(claims), len(verdicts))
	}

	r := &model.Report{
		ID:           id,
		GeneratedAt:  a.now().UTC(),
		OriginalText: originalText,
		FastMode:     fastMode,
		Claims:       claims,
		Verdicts:     verdicts,
		NoClaims:     len(claims) == 0,
	}
	r.Reliability = a.grade(r.CountVerdicts())
	r.Summary = summarize(r)
	return r, nil
}

// grade maps a verdict distribution onto the reliability scale:
// high when the verified ratio clears the high threshold with zero false
// claims, low when false claims clear the low threshold or outnumber
// verified ones, medium otherwise. Empty reports grade low.
func (a *Aggregator) grade(c model.Counts) model.Reliability {
	total := c.Total()
	if total == 0 {
		return model.ReliabilityLow
	}

	verifiedRatio := float64(c.Verified) / float64(total)
	falseRatio := float64(c.False) / float64(total)

	switch {
	case c.False == 0 && verifiedRatio >= a.highRatio:
		return model.ReliabilityHigh
	case falseRatio >= a.lowRatio || c.False > c.Verified:
		return model.ReliabilityLow
	default:
		return model.ReliabilityMedium
	}
}

// summarize composes the aggregate summary paragraph from the counts
func summarize(r *model.Report) string {
	if r.NoClaims {
		return "No verifiable claims were extracted from the text."
	}

	c := r.CountVerdicts()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Checked %d claim(s): %d verified, %d false, %d unverifiable.",
		c.Total(), c.Verified, c.False, c.Unverifiable)
	switch r.Reliability {
	case model.ReliabilityHigh:
		sb.WriteString(" The text is well supported by the evidence found.")
	case model.ReliabilityLow:
		sb.WriteString(" Significant parts of the text are contradicted or unsupported.")
	default:
		sb.WriteString(" The evidence found gives mixed or partial support.")
	}
	return sb.String()
}

// Fingerprint derives the report identity from the input text and mode.
// Identical input always maps to the same id, which is what lets the history
// store double as the idempotence cache.
func Fingerprint(text string, fastMode bool) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if fastMode {
		normalized = "fast\x00" + normalized
	}
	sum := sha256.Sum256([]byte(normalized))
	return "fc_" + hex.EncodeToString(sum[:16])
}
