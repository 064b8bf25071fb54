package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/factseek/factseek/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factseek",
	Short: "factseek - claim verification against live search backends",
	Long: `factseek extracts verifiable claims from text, checks each against
web search evidence with automatic provider fallback, and grades the
overall reliability of the text.

It reports how well claims are supported by the sources it can reach,
with explicit confidence and unverifiable states when evidence is
absent or contradictory. It is not an oracle of truth.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("factseek v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factseek/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and environment variables
func initConfig() {
	// .env loading mirrors the usual local setup; missing file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".factseek"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("FACTSEEK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the effective configuration: defaults, then config
// file values, then environment, then flags already bound to viper.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if home, err := os.UserHomeDir(); err == nil {
		cfg.History.Path = filepath.Join(home, ".factseek", "history")
		cfg.Providers.UsageFile = filepath.Join(home, ".factseek", "usage.json")
	}

	// Config file / FACTSEEK_* overrides. Every key that `config init`
	// writes is read back here.
	if v := viper.GetInt("providers.serper_limit"); v > 0 {
		cfg.Providers.SerperLimit = v
	}
	if v := viper.GetInt("providers.searx_limit"); v > 0 {
		cfg.Providers.SearxLimit = v
	}
	if v := viper.GetInt("providers.brave_limit"); v > 0 {
		cfg.Providers.BraveLimit = v
	}
	if v := viper.GetStringSlice("providers.searx_instances"); len(v) > 0 {
		cfg.Providers.SearxInstances = v
	}
	if viper.IsSet("providers.scraper_enabled") {
		cfg.Providers.ScraperEnabled = viper.GetBool("providers.scraper_enabled")
	}
	if v := viper.GetInt("providers.max_results"); v > 0 {
		cfg.Providers.MaxResults = v
	}
	if v := viper.GetString("providers.usage_file"); v != "" {
		cfg.Providers.UsageFile = v
	}
	if v := viper.GetDuration("verify.claim_deadline"); v > 0 {
		cfg.Verify.ClaimDeadline = v
	}
	if v := viper.GetInt("verify.workers"); v > 0 {
		cfg.Verify.Workers = v
	}
	if v := viper.GetInt("verify.fast_max_claims"); v > 0 {
		cfg.Verify.FastMaxClaims = v
	}
	if v := viper.GetInt("verify.fast_providers"); v > 0 {
		cfg.Verify.FastProviders = v
	}
	if v := viper.GetFloat64("reliability.high_ratio"); v > 0 {
		cfg.Reliability.HighRatio = v
	}
	if v := viper.GetFloat64("reliability.low_ratio"); v > 0 {
		cfg.Reliability.LowRatio = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.LLM.MaxTokens = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}
	if v := viper.GetString("history.path"); v != "" {
		cfg.History.Path = v
	}
	if v := viper.GetDuration("http.timeout"); v > 0 {
		cfg.HTTP.Timeout = v
	}
	if v := viper.GetString("http.user_agent"); v != "" {
		cfg.HTTP.UserAgent = v
	}

	// API keys come from the environment, never the config file
	cfg.Providers.SerperAPIKey = os.Getenv("SERPER_API_KEY")
	cfg.Providers.BraveAPIKey = os.Getenv("BRAVE_API_KEY")
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")

	cfg.Output.Verbose = viper.GetBool("verbose")
	return cfg
}

// overallTimeout derives the whole-run budget from the per-claim deadline
func overallTimeout(cfg *model.Config) time.Duration {
	t := 3 * cfg.Verify.ClaimDeadline
	if t < 2*time.Minute {
		t = 2 * time.Minute
	}
	return t
}
