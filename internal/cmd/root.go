// Package cmd provides the command-line interface for SiteScribe.
// It handles command parsing, configuration loading, and crawler execution.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/masahif/sitescribe/internal/config"
	"github.com/masahif/sitescribe/internal/crawler"
	"github.com/masahif/sitescribe/internal/export"
	"github.com/masahif/sitescribe/internal/logging"
	"github.com/masahif/sitescribe/internal/storage"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sitescribe [flags] <base-url>",
	Short: "Crawl a single site and convert its pages to Markdown",
	Long: `SiteScribe crawls one website depth first from a base URL.

It stays on the base URL's host, skips non-content and sensitive paths,
and turns every fetched page into a Markdown document with a metadata
header. Results are stored in SQLite and can be exported as Markdown files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawler,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Configuration file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sitescribe.yml)")

	// Configuration management flags
	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Crawl flags
	rootCmd.Flags().Float64P("delay", "r", 1.0, "Delay between requests in seconds")
	rootCmd.Flags().IntP("max-depth", "m", 3, "Maximum link depth from the base URL (0 = base URL only)")
	rootCmd.Flags().DurationP("timeout", "t", 30*time.Second, "HTTP request timeout")
	rootCmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent, "HTTP User-Agent header")
	rootCmd.Flags().Bool("respect-robots", false, "Honour robots.txt rules and Crawl-delay")
	rootCmd.Flags().String("pacing", config.PacingSleep, "Pacing mode: 'sleep' (delay after each fetch) or 'interval' (delay between fetch starts)")

	// URL filtering flags
	rootCmd.Flags().StringSlice("include-patterns", []string{}, "Regex patterns for URLs to include")
	rootCmd.Flags().StringSlice("exclude-patterns", []string{}, "Regex patterns for URLs to exclude")

	// Output flags
	rootCmd.Flags().StringP("database", "d", "./sitescribe.db", "Path to SQLite database file (empty disables persistence)")
	rootCmd.Flags().StringP("output-dir", "o", "", "Directory for Markdown export (empty disables export)")

	// Logging flags
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-format", "text", "Log format: text or json")
	rootCmd.Flags().String("log-file", "", "Also write logs to this file")

	// Bind basic flags to viper
	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"delay", "delay"},
		{"max_depth", "max-depth"},
		{"request_timeout", "timeout"},
		{"user_agent", "user-agent"},
		{"respect_robots", "respect-robots"},
		{"pacing", "pacing"},
		{"include_patterns", "include-patterns"},
		{"exclude_patterns", "exclude-patterns"},
		{"database_path", "database"},
		{"output_dir", "output-dir"},
		{"log.level", "log-level"},
		{"log.format", "log-format"},
		{"log.file", "log-file"},
	}

	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			// Log the error but continue - non-critical for operation
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("sitescribe")
	}

	viper.SetEnvPrefix("SS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// base_url has no flag, so bind its variable explicitly
	_ = viper.BindEnv("base_url")

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func generateUserAgent() string {
	if version != "" && version != "dev" {
		return fmt.Sprintf("SiteScribe/%s", version)
	}
	return config.DefaultUserAgent
}

// loadConfig merges defaults, viper sources and the positional base URL
func loadConfig(cmd *cobra.Command, args []string) (*config.CrawlConfig, error) {
	cfg := config.DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(args) > 0 {
		cfg.BaseURL = args[0]
	}

	// Update User-Agent with dynamic version if not explicitly set
	if !cmd.Flags().Changed("user-agent") && cfg.UserAgent == config.DefaultUserAgent {
		cfg.UserAgent = generateUserAgent()
	}

	return cfg, nil
}

func showCurrentConfig(out io.Writer, cfg *config.CrawlConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	// Validate configuration before showing it
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Configuration validation failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Displaying configuration anyway...\n\n")
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Fprintf(out, "# Current SiteScribe Configuration\n")
	fmt.Fprintf(out, "# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(out, "# Configuration file search paths: ./sitescribe.yml\n")
	fmt.Fprintf(out, "# Environment variables prefix: SS_\n\n")

	fmt.Fprint(out, string(yamlData))

	fmt.Fprintf(out, "\n# Configuration source priority:\n")
	fmt.Fprintf(out, "# 1. Command-line arguments (highest priority)\n")
	fmt.Fprintf(out, "# 2. Environment variables (SS_ prefix)\n")
	fmt.Fprintf(out, "# 3. Configuration file (sitescribe.yml)\n")
	fmt.Fprintf(out, "# 4. Default values (lowest priority)\n")

	return nil
}

func runCrawler(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	if showConfig {
		return showCurrentConfig(cmd.OutOrStdout(), cfg)
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrEmptyBaseURL) {
			return fmt.Errorf("no base URL provided\nUsage: %s", cmd.UseLine())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCloser, err := logging.SetDefault(logging.FromLogConfig(cfg.Log))
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, cmd.OutOrStdout())
}

// runCrawl performs one crawl with a validated configuration, then prints the
// summary and exports Markdown when an output directory is configured.
func runCrawl(ctx context.Context, cfg *config.CrawlConfig, out io.Writer) error {
	fmt.Fprintf(out, "Starting crawl with configuration:\n")
	fmt.Fprintf(out, "  Base URL: %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "  Max Depth: %d\n", cfg.MaxDepth)
	fmt.Fprintf(out, "  Delay: %vs (%s)\n", cfg.Delay, cfg.Pacing)
	fmt.Fprintf(out, "  Respect Robots: %t\n", cfg.RespectRobots)
	if cfg.DatabasePath != "" {
		fmt.Fprintf(out, "  Database: %s\n", cfg.DatabasePath)
	}
	if cfg.OutputDir != "" {
		fmt.Fprintf(out, "  Output: %s\n", cfg.OutputDir)
	}

	var opts []crawler.Option

	var store *storage.SQLiteStorage
	if cfg.DatabasePath != "" {
		var err error
		store, err = openStorage(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, crawler.WithSink(store))
	}

	c, err := crawler.NewCrawler(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize crawler: %w", err)
	}
	defer func() { _ = c.Stop() }()

	results, crawlErr := c.Crawl(ctx)
	if crawlErr != nil {
		fmt.Fprintf(out, "\nCrawl interrupted (%v), keeping partial results\n", crawlErr)
	}

	if store != nil {
		if err := store.SetMeta("finished_at", time.Now().Format(time.RFC3339)); err != nil {
			slog.Warn("Failed to record crawl end", "error", err)
		}
	}

	printSummary(out, results, c.GetStats())

	if cfg.OutputDir != "" {
		summary, err := export.NewExporter(cfg.OutputDir).Export(c.OrderedResults())
		if err != nil {
			return fmt.Errorf("failed to export markdown: %w", err)
		}
		fmt.Fprintf(out, "Markdown written to %s (%d files)\n", summary.IndexPath, len(summary.Files))
	}

	return nil
}

// openStorage opens the database and records the crawl parameters
func openStorage(cfg *config.CrawlConfig) (*storage.SQLiteStorage, error) {
	dbDir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	meta := map[string]string{
		"base_url":   cfg.BaseURL,
		"max_depth":  strconv.Itoa(cfg.MaxDepth),
		"started_at": time.Now().Format(time.RFC3339),
	}
	for key, value := range meta {
		if err := store.SetMeta(key, value); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	return store, nil
}

func printSummary(out io.Writer, results map[string]*crawler.PageResult, stats crawler.CrawlStats) {
	success, failed := 0, 0
	urls := make([]string, 0, len(results))
	for url, result := range results {
		urls = append(urls, url)
		if result.IsError() {
			failed++
		} else {
			success++
		}
	}
	sort.Strings(urls)

	fmt.Fprintf(out, "\nScraped %d pages (%d ok, %d errors) in %v\n",
		len(results), success, failed, stats.Duration.Round(time.Millisecond))
	if stats.PagesSkipped > 0 {
		fmt.Fprintf(out, "Skipped by robots.txt: %d\n", stats.PagesSkipped)
	}

	for _, url := range urls {
		result := results[url]
		if result.IsError() {
			fmt.Fprintf(out, "  [error] %s: %s\n", url, result.Error)
		} else {
			fmt.Fprintf(out, "  [ok]    %s (%s)\n", url, result.Metadata.Title)
		}
	}
}
