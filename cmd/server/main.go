package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bingo-hall/internal/config"
	"bingo-hall/internal/db"
	"bingo-hall/internal/logging"
	"bingo-hall/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()

	cmd := &cli.Command{
		Name:  "bingo-hall",
		Usage: "multiplayer bingo server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: cfg.Addr, Usage: "listen address"},
			&cli.DurationFlag{Name: "draw-interval", Value: cfg.DrawInterval(), Usage: "time between draws"},
			&cli.DurationFlag{Name: "first-draw-delay", Value: cfg.FirstDrawDelay(), Usage: "delay before the first draw"},
			&cli.DurationFlag{Name: "session-ttl", Value: cfg.SessionTTL(), Usage: "evict games idle this long (0 keeps them)"},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Value: cfg.LogFormat, Usage: "console or json"},
			&cli.StringFlag{Name: "database-url", Value: cfg.DatabaseURL, Usage: "Postgres URL for the results archive"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg.Addr = cmd.String("addr")
			cfg.DrawIntervalMillis = int(cmd.Duration("draw-interval") / time.Millisecond)
			cfg.FirstDrawDelayMillis = int(cmd.Duration("first-draw-delay") / time.Millisecond)
			cfg.SessionTTLMinutes = int(cmd.Duration("session-ttl") / time.Minute)
			cfg.LogLevel = cmd.String("log-level")
			cfg.LogFormat = cmd.String("log-format")
			cfg.DatabaseURL = cmd.String("database-url")
			return run(ctx, cfg)
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	var conn *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		conn, err = db.Open(cfg)
		if err != nil {
			return err
		}
		if err := db.Migrate(conn); err != nil {
			return err
		}
	} else {
		log.Info().Msg("DATABASE_URL not set, results archive disabled")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(conn, cfg)
	go srv.RunJanitor(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("bingo-hall listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("listen failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
	srv.Close()
	return nil
}
