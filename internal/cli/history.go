package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/factseek/factseek/internal/pipeline"
)

var showJSON bool

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past fact-check reports, newest first",
	RunE:  runHistory,
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Display a stored report by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output the full report as JSON")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	p, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	summaries, err := p.ListReports()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No reports yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tRELIABILITY\tVERIFIED\tFALSE\tUNVERIFIABLE")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			s.ID,
			s.GeneratedAt.Local().Format("2006-01-02 15:04"),
			s.Reliability,
			s.Counts.Verified,
			s.Counts.False,
			s.Counts.Unverifiable,
		)
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	p, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := p.GetReport(args[0])
	if err != nil {
		return err
	}

	if showJSON {
		return renderJSON(os.Stdout, report)
	}
	renderText(os.Stdout, report)
	return nil
}
