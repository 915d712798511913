// Package cmd implements the iris CLI using cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-assistant/iris/internal/config"
	"github.com/iris-assistant/iris/internal/plugin"
)

const version = "0.1.0"
const logo = "🌸"

var (
	logLevel   string
	configPath string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "iris",
	Short: logo + " iris — Personal Voice & Text Assistant",
	Long:  logo + " iris — a personal assistant with tool plugins, reminders, and persistent memory",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging(logLevel)
	},
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default "+config.ConfigPath()+")")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(remindCmd)
}

// loadConfig loads the config from --config, or the default path.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the process-wide slog handler. The success level
// used by the plugin loader sits between INFO and WARN and gets its own
// label.
func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == plugin.LevelSuccess {
					a.Value = slog.StringValue("SUCCESS")
				}
			}
			return a
		},
	})
	slog.SetDefault(slog.New(handler))
}
