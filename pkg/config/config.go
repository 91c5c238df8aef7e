package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the portal scraper
type Config struct {
	// Portal credentials and URLs
	Portal PortalConfig `yaml:"portal" json:"portal"`

	// MongoDB connection settings
	Mongo MongoConfig `yaml:"mongo" json:"mongo"`

	// Browser automation settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Extraction settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Scheduled sync settings
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`

	// Read-only API settings
	API APIConfig `yaml:"api" json:"api"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PortalConfig holds portal-specific configuration
type PortalConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	LoginURL  string `yaml:"login_url" json:"login_url"`
	ReportURL string `yaml:"report_url" json:"report_url"`
	Email     string `yaml:"email" json:"email"`
	Password  string `yaml:"password" json:"password"`
}

// MongoConfig holds document-store connection configuration
type MongoConfig struct {
	URI            string        `yaml:"uri" json:"uri"`
	Database       string        `yaml:"database" json:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	SocketTimeout  time.Duration `yaml:"socket_timeout" json:"socket_timeout"`
}

// BrowserConfig holds chromedp driver configuration
type BrowserConfig struct {
	Headless     bool          `yaml:"headless" json:"headless"`
	Stealth      bool          `yaml:"stealth" json:"stealth"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	WindowWidth  int           `yaml:"window_width" json:"window_width"`
	WindowHeight int           `yaml:"window_height" json:"window_height"`
	// StepTimeout bounds each element-resolution attempt; LoginWait bounds
	// the wait for a logged-in indicator after submit.
	StepTimeout time.Duration `yaml:"step_timeout" json:"step_timeout"`
	LoginWait   time.Duration `yaml:"login_wait" json:"login_wait"`
}

// ScrapeConfig holds table-extraction configuration
type ScrapeConfig struct {
	// MaxPages is the hard ceiling on pages walked per extraction.
	MaxPages int `yaml:"max_pages" json:"max_pages"`
	// StallPages aborts pagination after this many consecutive pages that
	// yield no previously-unseen account numbers.
	StallPages int `yaml:"stall_pages" json:"stall_pages"`
	// PagesPerMinute paces page turns to stay under automation heuristics.
	PagesPerMinute int           `yaml:"pages_per_minute" json:"pages_per_minute"`
	KeyDelayMin    time.Duration `yaml:"key_delay_min" json:"key_delay_min"`
	KeyDelayMax    time.Duration `yaml:"key_delay_max" json:"key_delay_max"`
}

// ScheduleConfig holds the recurring-sync loop configuration
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval"`
	// FailureCooldown is the extended pause after a run that returned an
	// error, always longer than the regular interval tick.
	FailureCooldown time.Duration `yaml:"failure_cooldown" json:"failure_cooldown"`
}

// APIConfig holds the read-only HTTP service configuration
type APIConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Portal: PortalConfig{
			BaseURL:   "https://myaccount.puprime.com",
			LoginURL:  "https://myaccount.puprime.com/login",
			ReportURL: "https://myaccount.puprime.com/ib/report",
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "puprime_data",
			ConnectTimeout: 10 * time.Second,
			SocketTimeout:  20 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:     true,
			Stealth:      true,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:  1920,
			WindowHeight: 1080,
			StepTimeout:  3 * time.Second,
			LoginWait:    20 * time.Second,
		},
		Scrape: ScrapeConfig{
			MaxPages:       500,
			StallPages:     3,
			PagesPerMinute: 30,
			KeyDelayMin:    50 * time.Millisecond,
			KeyDelayMax:    150 * time.Millisecond,
		},
		Schedule: ScheduleConfig{
			Interval:        6 * time.Hour,
			FailureCooldown: 30 * time.Minute,
		},
		API: APIConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Store connection and credentials keep their historical names
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		c.Mongo.URI = uri
	}
	if db := os.Getenv("DATABASE_NAME"); db != "" {
		c.Mongo.Database = db
	}
	if email := os.Getenv("PORTAL_EMAIL"); email != "" {
		c.Portal.Email = email
	}
	if password := os.Getenv("PORTAL_PASSWORD"); password != "" {
		c.Portal.Password = password
	}

	if base := os.Getenv("PUSCRAPER_BASE_URL"); base != "" {
		c.Portal.BaseURL = base
	}
	if login := os.Getenv("PUSCRAPER_LOGIN_URL"); login != "" {
		c.Portal.LoginURL = login
	}
	if report := os.Getenv("PUSCRAPER_REPORT_URL"); report != "" {
		c.Portal.ReportURL = report
	}
	if headless := os.Getenv("PUSCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if stealth := os.Getenv("PUSCRAPER_STEALTH"); stealth != "" {
		c.Browser.Stealth = strings.ToLower(stealth) == "true"
	}
	if interval := os.Getenv("PUSCRAPER_SYNC_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d > 0 {
			c.Schedule.Interval = d
		}
	}
	if maxPages := os.Getenv("PUSCRAPER_MAX_PAGES"); maxPages != "" {
		var val int
		fmt.Sscanf(maxPages, "%d", &val)
		if val > 0 {
			c.Scrape.MaxPages = val
		}
	}
	if addr := os.Getenv("PUSCRAPER_API_ADDR"); addr != "" {
		c.API.Addr = addr
	}
	if logLevel := os.Getenv("PUSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".puscraper.yaml",
		".puscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "puscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "puscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".puscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Portal.LoginURL == "" {
		errs = append(errs, errors.New("portal login URL is required"))
	}
	if c.Portal.ReportURL == "" {
		errs = append(errs, errors.New("portal report URL is required"))
	}

	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo URI is required"))
	}
	if c.Mongo.Database == "" {
		errs = append(errs, errors.New("mongo database name is required"))
	}

	if c.Browser.StepTimeout <= 0 {
		errs = append(errs, errors.New("browser step timeout must be positive"))
	}
	if c.Browser.LoginWait <= 0 {
		errs = append(errs, errors.New("browser login wait must be positive"))
	}

	if c.Scrape.MaxPages <= 0 {
		errs = append(errs, errors.New("max pages must be positive"))
	}
	if c.Scrape.StallPages <= 0 {
		errs = append(errs, errors.New("stall pages must be positive"))
	}
	if c.Scrape.KeyDelayMin < 0 || c.Scrape.KeyDelayMax < c.Scrape.KeyDelayMin {
		errs = append(errs, errors.New("key delay bounds are inverted"))
	}

	if c.Schedule.Interval <= 0 {
		errs = append(errs, errors.New("sync interval must be positive"))
	}
	if c.Schedule.FailureCooldown <= c.Schedule.Interval && c.Schedule.FailureCooldown <= 0 {
		errs = append(errs, errors.New("failure cooldown must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if email, ok := flags["email"].(string); ok && email != "" {
		c.Portal.Email = email
	}
	if password, ok := flags["password"].(string); ok && password != "" {
		c.Portal.Password = password
	}
	if uri, ok := flags["mongo-uri"].(string); ok && uri != "" {
		c.Mongo.URI = uri
	}
	if database, ok := flags["database"].(string); ok && database != "" {
		c.Mongo.Database = database
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if interval, ok := flags["interval"].(time.Duration); ok && interval > 0 {
		c.Schedule.Interval = interval
	}
	if addr, ok := flags["addr"].(string); ok && addr != "" {
		c.API.Addr = addr
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".puscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
