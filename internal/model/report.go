package model

import "time"

// Report is the aggregate result of one fact-check run
type Report struct {
	ID           string      `json:"id"`            // Content fingerprint, unique per input
	GeneratedAt  time.Time   `json:"generated_at"`  // When verification completed
	OriginalText string      `json:"original_text"` // The checked text, verbatim
	FastMode     bool        `json:"fast_mode,omitempty"`
	Claims       []Claim     `json:"claims"`   // Extraction order
	Verdicts     []Verdict   `json:"verdicts"` // 1:1 with Claims, same order
	Reliability  Reliability `json:"overall_reliability"`
	Summary      string      `json:"summary,omitempty"` // One-paragraph aggregate summary
	NoClaims     bool        `json:"no_claims,omitempty"` // Extraction found nothing checkable
}

// Reliability is the report-level aggregate grade
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// Counts holds the verdict distribution for a report.
// Always derived from the verdicts, never stored, so it cannot drift.
type Counts struct {
	Verified     int `json:"verified"`
	False        int `json:"false"`
	Unverifiable int `json:"unverifiable"`
}

// Total returns the number of counted verdicts
func (c Counts) Total() int {
	return c.Verified + c.False + c.Unverifiable
}

// CountVerdicts recomputes the verdict distribution for a report
func (r *Report) CountVerdicts() Counts {
	var c Counts
	for _, v := range r.Verdicts {
		switch v.Status {
		case StatusVerified:
			c.Verified++
		case StatusFalse:
			c.False++
		default:
			c.Unverifiable++
		}
	}
	return c
}

// ReportSummary is a cheap listing view of a stored report: no claims, no verdicts.
type ReportSummary struct {
	ID          string      `json:"id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Reliability Reliability `json:"overall_reliability"`
	Counts      Counts      `json:"counts"`
}

// Summarize derives the listing view from a full report
func (r *Report) Summarize() ReportSummary {
	return ReportSummary{
		ID:          r.ID,
		GeneratedAt: r.GeneratedAt,
		Reliability: r.Reliability,
		Counts:      r.CountVerdicts(),
	}
}
