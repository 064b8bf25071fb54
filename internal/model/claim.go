package model

// Claim represents one verifiable assertion extracted from input text
type Claim struct {
	ID       int           `json:"id"`                // Unique within a report, extraction order
	Text     string        `json:"text"`              // The claim text, verbatim
	Category ClaimCategory `json:"category"`          // Assigned at extraction, never revised
	Context  string        `json:"context,omitempty"` // Surrounding text span, if any
}

// ClaimCategory classifies the nature of the claim
type ClaimCategory string

const (
	CategoryHistorical  ClaimCategory = "historical"  // Historical facts and dates
	CategoryScientific  ClaimCategory = "scientific"  // Scientific claims
	CategoryStatistical ClaimCategory = "statistical" // Statistics and numbers
	CategoryQuotation   ClaimCategory = "quotation"   // Quotes attributed to people
	CategoryOther       ClaimCategory = "other"       // Everything else verifiable
)

// ParseCategory normalizes a category string, falling back to other
func ParseCategory(s string) ClaimCategory {
	switch ClaimCategory(s) {
	case CategoryHistorical, CategoryScientific, CategoryStatistical, CategoryQuotation:
		return ClaimCategory(s)
	default:
		return CategoryOther
	}
}
