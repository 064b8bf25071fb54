package model

// Verdict is the resolved outcome of verifying one claim.
// A verdict is created once by the verifier and never mutated; a re-check
// produces a new verdict.
type Verdict struct {
	ClaimID     int           `json:"claim_id"`
	Status      VerdictStatus `json:"status"`
	Confidence  float64       `json:"confidence"`        // 0 iff status is unverifiable
	Explanation string        `json:"explanation"`       // Why this status was reached
	Sources     []string      `json:"sources,omitempty"` // Distinct URLs, evidence order
}

// VerdictStatus is the terminal state of a claim verification
type VerdictStatus string

const (
	StatusVerified     VerdictStatus = "verified"
	StatusFalse        VerdictStatus = "false"
	StatusUnverifiable VerdictStatus = "unverifiable"
)
