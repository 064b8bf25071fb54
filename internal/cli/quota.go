package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/factseek/factseek/internal/search"
)

// quotaCmd represents the quota command
var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show search provider quota usage for the current period",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		router := search.BuildRouter(cfg)

		usage := router.Usage()
		if len(usage) == 0 {
			fmt.Println("No search providers configured. Set SERPER_API_KEY or BRAVE_API_KEY, or enable the scraper.")
			return nil
		}

		names := make([]string, 0, len(usage))
		for name := range usage {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tUSED\tREMAINING\tFAILURES\tPERIOD")
		for _, name := range names {
			s := usage[name]
			remaining := fmt.Sprintf("%d", s.Remaining)
			if s.Remaining < 0 {
				remaining = "unlimited"
			}
			period := s.Period
			if period == "" {
				period = "-"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", name, s.Used, remaining, s.Failures, period)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}
