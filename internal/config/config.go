// Package config manages application configuration.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Config represents the application configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	API    APIConfig    `yaml:"api"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// AppConfig holds the open platform app credentials.
type AppConfig struct {
	ID      string `yaml:"id" split_words:"true"`
	Secret  string `yaml:"secret" split_words:"true"`
	BaseURL string `yaml:"base_url" split_words:"true"`
}

// APIConfig tunes request pacing and retries.
type APIConfig struct {
	RateLimit    int           `yaml:"rate_limit" split_words:"true"` // requests per second
	MaxRetries   int           `yaml:"max_retries" split_words:"true"`
	InitialDelay time.Duration `yaml:"initial_delay" split_words:"true"`
	MaxDelay     time.Duration `yaml:"max_delay" split_words:"true"`
	PageSize     int           `yaml:"page_size" split_words:"true"`
	Timeout      time.Duration `yaml:"timeout" split_words:"true"`
}

// OutputConfig controls what is written and how.
type OutputConfig struct {
	Dir             string `yaml:"dir" split_words:"true"`
	Template        string `yaml:"template" split_words:"true"` // full, inline, fragment
	CSSMode         string `yaml:"css_mode" split_words:"true"` // external, inline
	CustomCSSPath   string `yaml:"custom_css_path,omitempty" split_words:"true"`
	ShowUnsupported bool   `yaml:"show_unsupported" split_words:"true"`
	InlineImages    bool   `yaml:"inline_images" split_words:"true"`
	AssetsDir       string `yaml:"assets_dir" split_words:"true"`
}

// LogConfig selects the log level and optional log file.
type LogConfig struct {
	Level string `yaml:"level" split_words:"true"` // none, normal, debug
	File  string `yaml:"file,omitempty" split_words:"true"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			ID:      "${FEISHU_APP_ID}",
			Secret:  "${FEISHU_APP_SECRET}",
			BaseURL: "https://open.feishu.cn",
		},
		API: APIConfig{
			RateLimit:    5,
			MaxRetries:   3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			PageSize:     500,
			Timeout:      time.Minute,
		},
		Output: OutputConfig{
			Dir:       ".",
			Template:  "full",
			CSSMode:   "external",
			AssetsDir: "assets",
		},
		Log: LogConfig{
			Level: "normal",
		},
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.API.RateLimit <= 0 {
		return fmt.Errorf("api.rate_limit must be positive, got %d", c.API.RateLimit)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must not be negative, got %d", c.API.MaxRetries)
	}
	if c.API.PageSize <= 0 || c.API.PageSize > 500 {
		return fmt.Errorf("api.page_size must be within 1-500, got %d", c.API.PageSize)
	}
	if err := oneOf("output.template", c.Output.Template, "full", "inline", "fragment"); err != nil {
		return err
	}
	if err := oneOf("output.css_mode", c.Output.CSSMode, "external", "inline"); err != nil {
		return err
	}
	return oneOf("log.level", c.Log.Level, "none", "normal", "debug")
}

// RequireCredentials reports missing app credentials.
func (c *Config) RequireCredentials() error {
	if c.App.ID == "" || c.App.Secret == "" {
		return fmt.Errorf("app id and secret are not configured; set app.id/app.secret or FEISHU2HTML_APP_ID/FEISHU2HTML_APP_SECRET")
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %q (supported: %v)", key, value, allowed)
}

type setter func(c *Config, v string) error

func stringSetter(field func(*Config) *string, allowed ...string) setter {
	return func(c *Config, v string) error {
		if len(allowed) > 0 {
			for _, a := range allowed {
				if v == a {
					*field(c) = v
					return nil
				}
			}
			return fmt.Errorf("invalid value %q (supported: %v)", v, allowed)
		}
		*field(c) = v
		return nil
	}
}

func intSetter(field func(*Config) *int, lo, hi int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid number: %s", v)
		}
		if n < lo || n > hi {
			return fmt.Errorf("value must be within %d-%d: %d", lo, hi, n)
		}
		*field(c) = n
		return nil
	}
}

func durationSetter(field func(*Config) *time.Duration) setter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid duration: %s", v)
		}
		*field(c) = d
		return nil
	}
}

func boolSetter(field func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", v)
		}
		*field(c) = b
		return nil
	}
}

var setters = map[string]setter{
	"app.id":                  stringSetter(func(c *Config) *string { return &c.App.ID }),
	"app.secret":              stringSetter(func(c *Config) *string { return &c.App.Secret }),
	"app.base_url":            stringSetter(func(c *Config) *string { return &c.App.BaseURL }),
	"api.rate_limit":          intSetter(func(c *Config) *int { return &c.API.RateLimit }, 1, 100),
	"api.max_retries":         intSetter(func(c *Config) *int { return &c.API.MaxRetries }, 0, 20),
	"api.page_size":           intSetter(func(c *Config) *int { return &c.API.PageSize }, 1, 500),
	"api.initial_delay":       durationSetter(func(c *Config) *time.Duration { return &c.API.InitialDelay }),
	"api.max_delay":           durationSetter(func(c *Config) *time.Duration { return &c.API.MaxDelay }),
	"api.timeout":             durationSetter(func(c *Config) *time.Duration { return &c.API.Timeout }),
	"output.dir":              stringSetter(func(c *Config) *string { return &c.Output.Dir }),
	"output.template":         stringSetter(func(c *Config) *string { return &c.Output.Template }, "full", "inline", "fragment"),
	"output.css_mode":         stringSetter(func(c *Config) *string { return &c.Output.CSSMode }, "external", "inline"),
	"output.custom_css_path":  stringSetter(func(c *Config) *string { return &c.Output.CustomCSSPath }),
	"output.show_unsupported": boolSetter(func(c *Config) *bool { return &c.Output.ShowUnsupported }),
	"output.inline_images":    boolSetter(func(c *Config) *bool { return &c.Output.InlineImages }),
	"output.assets_dir":       stringSetter(func(c *Config) *string { return &c.Output.AssetsDir }),
	"log.level":               stringSetter(func(c *Config) *string { return &c.Log.Level }, "none", "normal", "debug"),
	"log.file":                stringSetter(func(c *Config) *string { return &c.Log.File }),
}

// Set assigns value to the dotted key, e.g. "api.rate_limit".
func (c *Config) Set(key, value string) error {
	s, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err := s(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Keys returns the keys accepted by Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
