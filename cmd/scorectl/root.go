package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"move-improve-workers/internal/common/config"
	"move-improve-workers/internal/common/database"
	"move-improve-workers/internal/common/logger"
	"move-improve-workers/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "scorectl",
	Short:         "Move vs Improve scoring tool",
	Long:          "scorectl scores questionnaire bundles offline and inspects the assessment record store.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config YAML file (defaults to configs/config.yaml lookup)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(registryCmd)
}

// cliLogger logs to stderr so command output stays clean.
func cliLogger(cmd *cobra.Command) logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.NewStructured(level, "console", "stderr")
}

// loadConfig uses --config when given, then the standard lookup.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return config.LoadFromFile(p)
	}
	return config.Load()
}

// openStore connects to PostgreSQL. The returned func closes the pool.
func openStore(ctx context.Context, cfg *config.Config) (*store.PostgresStore, func(), error) {
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return store.NewPostgresStore(pg.GetDB()), func() { pg.Close() }, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
