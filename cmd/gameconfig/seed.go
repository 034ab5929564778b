package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-game-config/internal/seed"
	"github.com/goliatone/go-game-config/pkg/di"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default game configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		container, err := di.NewContainer(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer container.Close()

		created, err := seed.Run(ctx, container.Service(), log)
		if err != nil {
			return err
		}
		if !created {
			cmd.Println("default configuration already present")
			return nil
		}
		cmd.Println("default configuration created")
		return nil
	},
}
