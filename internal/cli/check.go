package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/factseek/factseek/internal/pipeline"
)

var (
	checkFast    bool
	checkJSON    bool
	checkMD      bool
	checkNoCache bool
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Fact-check a text from a file or stdin",
	Long: `Extract claims from the given text and verify each one against
web search evidence. Reads from the file argument, or from stdin when
no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFast, "fast", false, "fast mode: fewer claims, fewer providers")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output the full report as JSON")
	checkCmd.Flags().BoolVar(&checkMD, "md", false, "output the report as markdown")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "ignore cached reports for identical input")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 0, "overall run timeout (default derived from per-claim deadline)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no input text: pass a file or pipe text on stdin")
	}

	cfg := buildConfig()
	if checkNoCache {
		cfg.Cache.Enabled = false
	}

	p, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	timeout := checkTimeout
	if timeout <= 0 {
		timeout = overallTimeout(cfg)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	report, err := p.CheckText(ctx, text, checkFast)
	if err != nil {
		return err
	}

	switch {
	case checkJSON:
		return renderJSON(os.Stdout, report)
	case checkMD:
		return renderMarkdown(os.Stdout, report)
	default:
		renderText(os.Stdout, report)
		return nil
	}
}

func readInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
