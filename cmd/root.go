package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gapidemo/internal/config"
	"github.com/teemow/gapidemo/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// cfg is loaded before every command runs.
	cfg config.Config
)

// rootCmd represents the base command for the gapidemo application
var rootCmd = &cobra.Command{
	Use:   "gapidemo",
	Short: "Google APIs demo: Gmail, Drive, Calendar, Vision and Sheets",
	Long: `gapidemo showcases several Google REST APIs behind one binary:
OAuth login, Gmail read and send, Drive search, upload and delete,
Calendar scheduling, Vision receipt scanning and Sheets append.

It can run as:
  - A command-line tool (login, send, scan-receipt, ...)
  - An MCP (Model Context Protocol) server for AI assistants (serve)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gapidemo version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env, the config file and the environment into cfg and
// installs the default logger. Logs always go to stderr since stdout carries
// the stdio transport.
func loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		loaded.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		loaded.Logging.Format = logFormat
	}

	if _, err := logging.Setup(os.Stderr, loaded.Logging.Level, loaded.Logging.Format); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	cfg = loaded
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/gapidemo/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error. Can also use LOG_LEVEL env var.")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json. Can also use LOG_FORMAT env var.")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newScanReceiptCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
