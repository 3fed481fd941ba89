// Package cli implements the feishu2html command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roboco-io/feishu2html/internal/config"
	"github.com/roboco-io/feishu2html/internal/logging"
)

var version = "dev"

var (
	rootConfigPath string
	rootLogLevel   string
	rootLogFile    string
)

var rootCmd = &cobra.Command{
	Use:   "feishu2html",
	Short: "Export Feishu/Lark docx documents to HTML",
	Long: `feishu2html downloads Feishu/Lark cloud documents through the open
platform API and renders them as standalone HTML files.

Credentials come from the config file (~/.feishu2html/config.yaml) or the
FEISHU2HTML_APP_ID and FEISHU2HTML_APP_SECRET environment variables.

Examples:
  feishu2html export https://acme.feishu.cn/docx/ZzYyXx1234567890
  feishu2html export doxcnAbCdEf12 doxcnGhIjKl34 -o ./html
  feishu2html tree doxcnAbCdEf12
  feishu2html config init`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "config file path (default: ~/.feishu2html/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "log level (none, normal, debug)")
	rootCmd.PersistentFlags().StringVar(&rootLogFile, "log-file", "", "also write a debug log to this file")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLoader() (*config.Loader, error) {
	if rootConfigPath != "" {
		return config.NewLoaderWithPath(rootConfigPath), nil
	}
	return config.NewLoader()
}

// loadConfig reads the config file, applies environment and global flag
// overrides and validates the result.
func loadConfig() (*config.Config, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootLogLevel != "" {
		cfg.Log.Level = rootLogLevel
	}
	if rootLogFile != "" {
		cfg.Log.File = rootLogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, func() error, error) {
	return logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File}, cmd.ErrOrStderr())
}
