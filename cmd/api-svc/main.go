package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"plugu/internal/config"
	"plugu/internal/dbsql"
	"plugu/internal/di"
	"plugu/internal/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "api-svc",
		Usage: "PlugU crops, activities, posts, media and profiles over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"PLUGU_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "Create or update tables before serving",
				Value: true,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	log.Info().Msg("starting api service")

	app, cleanup, err := di.InitializeAPIApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize api service: %w", err)
	}
	defer cleanup()

	if c.Bool("migrate") {
		if err := dbsql.Migrate(app.DB); err != nil {
			return err
		}
		log.Info().Msg("database migration completed")
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.APIPort),
		Handler:      app.Router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("api service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to serve: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down api service")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("api service stopped")
	return nil
}
