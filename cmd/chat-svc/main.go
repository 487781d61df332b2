package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"plugu/internal/config"
	"plugu/internal/dbsql"
	"plugu/internal/di"
	"plugu/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "chat-svc",
		Usage: "PlugU direct messaging over gRPC",
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

	log.Info().Msg("starting chat service")

	app, cleanup, err := di.InitializeChatApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize chat service: %w", err)
	}
	defer cleanup()

	if c.Bool("migrate") {
		if err := dbsql.Migrate(app.DB); err != nil {
			return err
		}
		log.Info().Msg("database migration completed")
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.ChatServicePort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("chat service listening")
		serveErr <- app.Server.Serve(lis)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to serve: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down chat service")
	}

	app.Server.GracefulStop()
	log.Info().Msg("chat service stopped")
	return nil
}
