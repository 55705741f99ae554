package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/chat-courier/internal"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	storePath  string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// tokenEnvVar is the environment variable holding the identity token
const tokenEnvVar = "COURIER_TOKEN"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chat-courier",
	Short: "Deliver chat messages to a streaming AI backend without losing them",
	Long: `chat-courier sends your messages to a streaming AI chat backend and
makes sure a composed message is never silently lost: if authentication is
missing or expires mid-send, the message is kept and replayed with the
same client message id, so the backend never sees it twice.

Features:
  • At-most-once delivery per message via stable client message ids
  • Pending messages survive restarts (SQLite-backed store)
  • Compose a first message before its chat exists (topic intents)
  • Automatic replay once you are authenticated again
  • Streams the assistant reply as it arrives

Quick Start:
  chat-courier send --chat <chat-id> "hello"    # Send a message
  chat-courier pending                          # See what is waiting
  chat-courier replay --chat <chat-id>          # Replay after login

Authentication is read from ` + tokenEnvVar + ` (or a .env file).`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Override pending-store database path")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig loads configuration honoring the --config and --store flags
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	return cfg, nil
}

// openPendingStore opens the durable pending store as fail-soft. The
// returned close function is nil-safe.
func openPendingStore(cfg *internal.Config) (*internal.SafeStore, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	backend, err := internal.OpenSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open pending store: %w", err)
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			internal.LogWarn("Failed to close pending store: %v", err)
		}
	}
	return internal.NewSafeStore(backend), closeFn, nil
}

// openIntentStore opens the cross-entry intent store as fail-soft
func openIntentStore(cfg *internal.Config) *internal.SafeStore {
	return internal.NewSafeStore(internal.NewFileStore(cfg.Store.IntentDir))
}
