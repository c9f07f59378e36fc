package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	dbPath     string
	cfg        *internal.Config
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chat-session",
	Short: "Parse and analyze exported chat logs",
	Long: `A CLI tool to parse WhatsApp-style chat exports into clean message
records and compute per-user and global conversation statistics.

The parser detects the text encoding and the export layout (iOS, Android,
European and ISO variants), merges multi-line messages, drops service
messages and reports exactly what it skipped.

Features:
  • Analyze one or many exports in parallel
  • Store parsed sessions in a local SQLite database (re-imports are no-ops)
  • Response times, activity patterns, emoji and sentiment statistics
  • Export records as JSONL, JSON, YAML, Markdown or CSV

Quick Start:
  chat-session analyze _chat.txt         # Parse, store and summarize an export
  chat-session list                      # List stored sessions
  chat-session stats <session-id>        # Full statistics report
  chat-session export --format csv       # Export every session`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			loaded.DBPath = dbPath
		}
		if err := internal.InitLogging(loaded.Logging); err != nil {
			internal.LogWarn("Failed to initialize log file: %v", err)
		}
		if verbose {
			internal.SetVerbose(true)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = internal.SyncLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the configured session database
func openStore() (*internal.Store, error) {
	store, err := internal.OpenStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store, nil
}

// cacheManager returns the statistics cache for the configured directory
func cacheManager() *internal.CacheManager {
	return internal.NewCacheManager(cfg.CacheDir)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/chat-session/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session database path (overrides db_path from config)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
