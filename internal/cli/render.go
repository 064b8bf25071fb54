package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/factseek/factseek/internal/model"
)

func renderJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func renderText(w io.Writer, report *model.Report) {
	counts := report.CountVerdicts()

	fmt.Fprintf(w, "Report %s (%s)\n", report.ID, report.GeneratedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Reliability: %s\n", strings.ToUpper(string(report.Reliability)))
	fmt.Fprintf(w, "Claims: %d verified, %d false, %d unverifiable\n\n",
		counts.Verified, counts.False, counts.Unverifiable)

	if report.NoClaims {
		fmt.Fprintln(w, "No verifiable claims found in the input text.")
		return
	}

	for i, claim := range report.Claims {
		v := report.Verdicts[i]
		fmt.Fprintf(w, "[%d] %s\n", claim.ID, claim.Text)
		fmt.Fprintf(w, "    %s (confidence %.2f)\n", statusLabel(v.Status), v.Confidence)
		if v.Explanation != "" {
			fmt.Fprintf(w, "    %s\n", v.Explanation)
		}
		for _, src := range v.Sources {
			fmt.Fprintf(w, "    - %s\n", src)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, report.Summary)
}

func renderMarkdown(w io.Writer, report *model.Report) error {
	counts := report.CountVerdicts()

	fmt.Fprintf(w, "# Fact-Check Report\n\n")
	fmt.Fprintf(w, "- **ID:** `%s`\n", report.ID)
	fmt.Fprintf(w, "- **Generated:** %s\n", report.GeneratedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "- **Reliability:** %s\n", report.Reliability)
	fmt.Fprintf(w, "- **Claims:** %d verified, %d false, %d unverifiable\n\n",
		counts.Verified, counts.False, counts.Unverifiable)

	if report.NoClaims {
		fmt.Fprintln(w, "No verifiable claims found in the input text.")
		return nil
	}

	fmt.Fprintf(w, "## Claims\n\n")
	for i, claim := range report.Claims {
		v := report.Verdicts[i]
		fmt.Fprintf(w, "### %d. %s\n\n", claim.ID, claim.Text)
		fmt.Fprintf(w, "**%s** (confidence %.2f)\n\n", statusLabel(v.Status), v.Confidence)
		if v.Explanation != "" {
			fmt.Fprintf(w, "%s\n\n", v.Explanation)
		}
		for _, src := range v.Sources {
			fmt.Fprintf(w, "- <%s>\n", src)
		}
		if len(v.Sources) > 0 {
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "## Summary\n\n%s\n", report.Summary)
	return nil
}

func statusLabel(s model.VerdictStatus) string {
	switch s {
	case model.StatusVerified:
		return "VERIFIED"
	case model.StatusFalse:
		return "FALSE"
	default:
		return "UNVERIFIABLE"
	}
}
