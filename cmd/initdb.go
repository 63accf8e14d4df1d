package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/watermelon1024/video-downloader-bot/internal/config"
	"github.com/watermelon1024/video-downloader-bot/internal/errorlog"
)

func initDBCmd() *cli.Command {
	return &cli.Command{
		Name:  "init-db",
		Usage: "Create the error log database and schema (safe to run repeatedly)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Usage:   "Path to the SQLite database file",
				Sources: cli.EnvVars("VDB_DATABASE_PATH"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if v := cmd.String("database"); v != "" {
				cfg.Database.Path = v
			}

			store, err := errorlog.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			if err := store.Initialize(ctx); err != nil {
				return fmt.Errorf("initialize schema: %w", err)
			}

			log.Info().Str("path", cfg.Database.Path).Msg("database initialized")
			return nil
		},
	}
}
