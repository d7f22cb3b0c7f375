package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookgo/clock"
	"github.com/spf13/cobra"

	"github.com/iudanet/atmtrack/internal/config"
	"github.com/iudanet/atmtrack/internal/server"
	"github.com/iudanet/atmtrack/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	v := config.NewServerViper()
	var configFile string

	cmd := &cobra.Command{
		Use:           "atmtrack-server",
		Short:         "Development backend for the ATM maintenance client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadServer(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("ATMTrack Server\nVersion:    %s\nBuild Date: %s\nGit Commit: %s\n",
		Version, BuildDate, GitCommit))

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "path to config file (yaml, json or toml)")
	flags.String("addr", ":8080", "listen address")
	flags.String("db", "atmtrack-server.db", "path to SQLite database")
	flags.String("jwt-secret", "", "HMAC secret for access tokens, at least 32 bytes")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Duration("access-ttl", 15*time.Minute, "access token lifetime")
	flags.Duration("refresh-ttl", 7*24*time.Hour, "refresh token lifetime")
	flags.Int("bcrypt-cost", 12, "bcrypt cost for new passwords")
	flags.Bool("seed", false, "create demo users and devices")
	if err := config.BindFlags(v, flags); err != nil {
		// флаги объявлены выше, ошибка возможна только при опечатке в коде
		panic(err)
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Server) error {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("starting server",
		"version", Version,
		"addr", cfg.Addr,
		"db", cfg.DB)

	store, err := sqlite.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.Seed {
		if err := server.Seed(ctx, store, cfg.BcryptCost, logger); err != nil {
			return err
		}
	}

	srv := server.New(cfg, store, logger, clock.New(), Version)
	defer srv.Close()

	return srv.Run(ctx)
}
