package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lectio/pollgen/internal/logging"
	"github.com/lectio/pollgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pollgen",
	Short: "Live-classroom quiz generation from lecture transcripts",
	Long: "Pollgen turns streamed lecture transcripts into live quiz questions " +
		"using a fallback chain of AI providers, with embedding-based duplicate " +
		"suppression against the session's question history.",
	SilenceUsage: true,
}

func Execute() error {
	// Missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides POLLGEN_DB env var)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path from --db, then POLLGEN_DB,
// then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := os.Getenv("POLLGEN_DB"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return logging.NewLogger(os.Stderr, level)
}
