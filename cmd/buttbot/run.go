// Copyright 2024-2026 Aiku AI

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aiku/buttbot/pkg/admin"
	"github.com/aiku/buttbot/pkg/bot"
	"github.com/aiku/buttbot/pkg/buttify"
	"github.com/aiku/buttbot/pkg/chatlog"
	"github.com/aiku/buttbot/pkg/config"
	"github.com/aiku/buttbot/pkg/connector"
)

var errConfigCreated = errors.New("example config written, edit it and start again")

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the configured chat networks and run the bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	return cmd
}

// writeExampleConfig creates path from the example when it doesn't exist.
func writeExampleConfig(path string) error {
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	return fmt.Errorf("%w: %s", errConfigCreated, path)
}

func runBot(ctx context.Context, configPath string) error {
	if err := writeExampleConfig(configPath); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logPtr, err := cfg.Logger()
	if err != nil {
		return err
	}
	log := *logPtr
	zerolog.DefaultContextLogger = logPtr
	log.Info().Str("version", Tag).Str("commit", Commit).Msg("Starting buttbot")

	logs := chatlog.NewManager(cfg.ChannelLogs, log)
	defer func() {
		if err := logs.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close channel logs")
		}
	}()
	store, err := cfg.OpenStore(log)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := admin.NewMetrics(reg)

	engine := buttify.NewEngine(buttify.WithLogger(log))
	b := bot.New(cfg.Bot, engine, store,
		bot.WithLogger(log),
		bot.WithChatLog(logs),
		bot.WithMetrics(metrics),
	)
	if _, err = b.Load(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Mattermost.Enabled() {
		mm := connector.NewMattermostClient(cfg.Mattermost, b, log)
		if err = mm.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to mattermost: %w", err)
		}
		b.JoinAll(ctx, mm)
		g.Go(func() error { return mm.Run(ctx) })
	}
	if cfg.Matrix.Enabled() {
		mx, err := connector.NewMatrixClient(cfg.Matrix, b, log)
		if err != nil {
			return err
		}
		b.JoinAll(ctx, mx)
		g.Go(func() error { return mx.Run(ctx) })
	}
	if cfg.AdminAPIAddr != "" {
		srv := admin.NewServer(cfg.AdminAPIAddr, admin.NewHandler(b, reg, log), log)
		g.Go(func() error { return srv.Run(ctx) })
	}

	err = g.Wait()
	log.Info().Msg("Stopped buttbot")
	return err
}
