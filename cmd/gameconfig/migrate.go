package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the configurations schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := store.Open(ctx, store.Options{
			Driver: cfg.DB.Driver,
			DSN:    cfg.DB.DSN,
			Debug:  cfg.DB.Debug,
		})
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("schema up to date", zap.String("driver", cfg.DB.Driver))
		return nil
	},
}
