package cmd

import (
	"context"
	"os"

	"github.com/heartscript/storefront/app/configs"
	"github.com/heartscript/storefront/app/db/seeders"
	"github.com/heartscript/storefront/app/models/migrations"
	"github.com/heartscript/storefront/app/utils/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func RunCli() {
	cmd := &cli.Command{
		Name:  "storefront",
		Usage: "HeartScript storefront server and maintenance tasks",
		Action: func(ctx context.Context, c *cli.Command) error {
			return Serve(ctx, loadEnv())
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, c *cli.Command) error {
					return Serve(ctx, loadEnv())
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(loadEnv())
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Info().Msg("Migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Insert starter categories and products",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "seed", Value: 42, Usage: "random seed for generated products"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(loadEnv())
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					if err := seeders.DBSeed(db, c.Int64("seed")); err != nil {
						return err
					}
					log.Info().Msg("Seeding complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session, CSRF and JWT keys for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.GenerateAndPrintSessionKeys(); err != nil {
						return err
					}
					log.Info().Msg("Key generation complete. Please copy the keys to your .env file.")
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func loadEnv() configs.ENV {
	env := configs.LoadEnv()
	logger.Init(env.IsProduction())
	return env
}
