package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/feishu2html/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage feishu2html configuration.

Config file: ~/.feishu2html/config.yaml (override with --config)

Subcommands:
  show    print the current configuration
  init    create a default config file
  set     change a config value
  path    print the config file path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Long: `Print the configuration file contents (defaults when it does not exist)
followed by the environment overrides currently set.

Secrets are masked.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Create a default config file at ~/.feishu2html/config.yaml.

Fails when the file already exists; use --force to overwrite it.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a config value",
	Long: `Change a config value.

Supported keys:
  ` + strings.Join(config.Keys(), "\n  ") + `

Examples:
  feishu2html config set app.id cli_a1b2c3
  feishu2html config set api.rate_limit 3
  feishu2html config set output.template inline`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		loader, err := newLoader()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
	},
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// envOverrides lists the environment variables config show reports.
var envOverrides = []struct {
	key    string
	desc   string
	secret bool
}{
	{"FEISHU2HTML_APP_ID", "app id", false},
	{"FEISHU2HTML_APP_SECRET", "app secret", true},
	{"FEISHU2HTML_APP_BASE_URL", "open platform base URL", false},
	{"FEISHU2HTML_OUTPUT_DIR", "output directory", false},
	{"FEISHU2HTML_LOG_LEVEL", "log level", false},
	{"FEISHU_APP_ID", "app id (default config placeholder)", false},
	{"FEISHU_APP_SECRET", "app secret (default config placeholder)", true},
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	if loader.Exists() {
		fmt.Fprintf(out, "Config file: %s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(out, "Config file: (defaults)\n\n")
	}

	shown := *cfg
	shown.App.Secret = maskSecret(cfg.App.Secret)
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to print config: %w", err)
	}
	fmt.Fprintln(out, string(data))

	fmt.Fprintln(out, "Environment:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, ev := range envOverrides {
		value := os.Getenv(ev.key)
		if ev.secret {
			value = maskSecret(value)
		}
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", ev.key, ev.desc, value)
	}
	return w.Flush()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("config file already exists: %s\nuse --force to overwrite it", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file created: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("%w\nsupported keys: %s", err, strings.Join(config.Keys(), ", "))
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if key == "app.secret" {
		value = maskSecret(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated: %s = %s\n", key, value)
	return nil
}

// maskSecret hides all but the ends of a secret. ${VAR} placeholders are
// shown as they are.
func maskSecret(s string) string {
	if s == "" || (strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}")) {
		return s
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
