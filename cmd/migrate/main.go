package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bingo-hall/internal/config"
	"bingo-hall/internal/logging"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	dirFlag := &cli.StringFlag{
		Name:  "dir",
		Value: filepath.Join("db", "migrations"),
		Usage: "directory holding the .sql migrations",
	}
	cmd := &cli.Command{
		Name:  "migrate",
		Usage: "manage the bingo-hall archive schema",
		Flags: []cli.Flag{dirFlag},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrate(cmd.String("dir"), cfg.DatabaseURL, func(m *migrate.Migrate) error {
						if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
							return err
						}
						log.Info().Msg("database migrations applied")
						return nil
					})
				},
			},
			{
				Name:      "down",
				Usage:     "roll back the last N migrations",
				ArgsUsage: "N",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					steps := 1
					if raw := cmd.Args().First(); raw != "" {
						if _, err := fmt.Sscanf(raw, "%d", &steps); err != nil || steps <= 0 {
							return fmt.Errorf("invalid step count %q", raw)
						}
					}
					return withMigrate(cmd.String("dir"), cfg.DatabaseURL, func(m *migrate.Migrate) error {
						if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
							return err
						}
						log.Info().Int("steps", steps).Msg("database migrations rolled back")
						return nil
					})
				},
			},
			{
				Name:      "create",
				Usage:     "write an empty up/down migration pair",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return createMigration(cmd.String("dir"), cmd.Args().First(), time.Now().UTC())
				},
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
}

func withMigrate(dir, databaseURL string, fn func(m *migrate.Migrate) error) error {
	if databaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}
	defer m.Close()
	return fn(m)
}

func createMigration(dir, name string, now time.Time) error {
	if name == "" {
		return errors.New("migration name is required")
	}
	if strings.ContainsAny(name, " ") {
		return errors.New("migration name must not contain spaces")
	}
	base := fmt.Sprintf("%s_%s", now.Format("20060102150405"), name)
	upPath := filepath.Join(dir, base+".up.sql")
	downPath := filepath.Join(dir, base+".down.sql")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create migrations dir: %w", err)
	}
	if err := writeNewFile(upPath, "-- up migration\n"); err != nil {
		return fmt.Errorf("create up migration: %w", err)
	}
	if err := writeNewFile(downPath, "-- down migration\n"); err != nil {
		return fmt.Errorf("create down migration: %w", err)
	}
	log.Info().Str("up", upPath).Str("down", downPath).Msg("migration created")
	return nil
}

func writeNewFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
