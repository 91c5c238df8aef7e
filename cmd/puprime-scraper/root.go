package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mosfeqahamed/puprime-scraping/pkg/config"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	mongoURI   string
	database   string
	email      string
	password   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "puprime-scraper",
	Short: "Sync PU Prime referral accounts into MongoDB",
	Long: `PU Prime Scraper logs in to the PU Prime client portal with a real
browser, walks the paginated IB referral report and keeps a MongoDB
collection of account records in sync.

Features:
  - Resilient element resolution with ordered selector fallbacks
  - Full and incremental sync modes with an audit log per run
  - Scheduled service mode with failure cool-down
  - Read-only HTTP API over the synced data
  - Secure credential storage using the system keychain`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.puscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string")
	rootCmd.PersistentFlags().StringVar(&database, "database", "", "MongoDB database name")
	rootCmd.PersistentFlags().StringVar(&email, "email", "", "portal login email")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "portal login password")

	rootCmd.SetVersionTemplate(`PU Prime Scraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags gathers the persistent flags set on the command line into the
// overrides map the config loader applies last.
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if mongoURI != "" {
		flags["mongo-uri"] = mongoURI
	}
	if database != "" {
		flags["database"] = database
	}
	if email != "" {
		flags["email"] = email
	}
	if password != "" {
		flags["password"] = password
	}
	return flags
}

// loadConfig loads configuration and initializes logging. Shared by every
// subcommand that actually runs the pipeline.
func loadConfig(extra map[string]interface{}) (*config.Config, error) {
	flags := globalFlags()
	for k, v := range extra {
		flags[k] = v
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
