package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/internal/config"
	"github.com/goliatone/go-game-config/internal/logger"
)

var (
	configPath string
	envOnly    bool

	cfg config.Config
	log *zap.Logger
)

func defaultConfigPath() string {
	if s := os.Getenv("GCFG_CONFIG"); s != "" {
		return s
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:           "gameconfig <command>",
	Short:         "Game configuration service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath, envOnly)
		if err != nil {
			return err
		}
		l, err := logger.New(loaded.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, log = loaded, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to a YAML config file (env GCFG_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&envOnly, "env-only", false, "ignore the config file and read GCFG_* variables only")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
