// Command solarctl runs keyword discovery, keyword bootstrap and competitor
// tracking passes from a terminal or cron, without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"solardash/internal/config"
	"solardash/internal/db"
	"solardash/internal/logging"
)

var (
	areaFlag  string
	limitFlag int
)

var rootCmd = &cobra.Command{
	Use:   "solarctl",
	Short: "Solar marketing analytics from the command line",
	Long: `solarctl runs the same passes as the solardash API.

Available subcommands:
  discover    - Suggest keywords for a service area (no database needed)
  bootstrap   - Discover keywords for an area and record the business's rankings
  track       - Discover and rank competitors for every configured service area
  credentials - Inspect and import provider credentials`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr so stdout stays parseable.
		level := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
		slog.SetDefault(logging.NewWithWriter(os.Stderr, true, level))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd, bootstrapCmd, trackCmd, credentialsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openDB connects and migrates the database named by DATABASE_URL.
func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := db.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return database, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
