package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/factseek/factseek/internal/pipeline"
)

var (
	statsContext string
	statsYear    int
	statsJSON    bool
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <statistic>",
	Short: "Verify a single statistic or numeric claim",
	Long: `Check one specific statistic against web search evidence, e.g.

  factseek stats "The Eiffel Tower is 330 metres tall"
  factseek stats "global smartphone users reached 6.8 billion" --year 2023`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsContext, "context", "", "surrounding context for the statistic")
	statsCmd.Flags().IntVar(&statsYear, "year", 0, "year the statistic refers to")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output the full report as JSON")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	p, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	report, err := p.CheckStatistic(ctx, args[0], statsContext, statsYear)
	if err != nil {
		return err
	}

	if statsJSON {
		return renderJSON(os.Stdout, report)
	}
	renderText(os.Stdout, report)
	return nil
}
