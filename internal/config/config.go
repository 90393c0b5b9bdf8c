// Package config provides configuration management for the crawler.
// It defines the crawl session options and their default values.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// Pacing modes
const (
	PacingSleep    = "sleep"    // flat sleep after every fetch
	PacingInterval = "interval" // measured interval between fetch starts
)

// DefaultUserAgent is sent when no client identity is configured
const DefaultUserAgent = "SiteScribe/1.0"

// LogConfig holds logging options
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`             // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"`           // json or text
	FilePath   string `mapstructure:"file" yaml:"file"`               // Optional log file
	MaxSizeMB  int64  `mapstructure:"max_size_mb" yaml:"max_size_mb"` // Rotation threshold
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"` // Rotated files kept
}

// CrawlConfig holds crawler configuration
type CrawlConfig struct {
	// Crawl session
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`               // Scope anchor and start URL
	Delay          float64       `mapstructure:"delay" yaml:"delay"`                     // Seconds between fetches
	MaxDepth       int           `mapstructure:"max_depth" yaml:"max_depth"`             // Depth bound, base URL is depth 0
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // Per fetch timeout
	RespectRobots  bool          `mapstructure:"respect_robots" yaml:"respect_robots"`   // Honour robots.txt rules
	Pacing         string        `mapstructure:"pacing" yaml:"pacing"`                   // sleep or interval

	// URL filtering on top of the built-in policy
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"` // Regex patterns for URLs to include
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"` // Regex patterns for URLs to exclude

	// Output
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"` // SQLite file, empty disables persistence
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`       // Markdown export directory, empty disables export

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		Delay:          1.0,
		MaxDepth:       3,
		UserAgent:      DefaultUserAgent,
		RequestTimeout: 30 * time.Second,
		RespectRobots:  false,
		Pacing:         PacingSleep,
		DatabasePath:   "./sitescribe.db",
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 5,
		},
	}
}

// Validate checks if the configuration is valid
func (c *CrawlConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrEmptyBaseURL
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.MaxDepth < 0 {
		return ErrNegativeDepth
	}

	if c.Delay < 0 {
		return ErrNegativeDelay
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Pacing == "" {
		c.Pacing = PacingSleep
	}
	if c.Pacing != PacingSleep && c.Pacing != PacingInterval {
		return ErrInvalidPacing
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	for _, pattern := range append(append([]string{}, c.IncludePatterns...), c.ExcludePatterns...) {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
		}
	}

	return nil
}

// DelayDuration returns the configured delay as a time.Duration
func (c *CrawlConfig) DelayDuration() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}
