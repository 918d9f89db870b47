package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/HaaL01/whiteboard/internal/config"
	"github.com/HaaL01/whiteboard/internal/server"
)

func newServeCommand() *cobra.Command {
	def := config.Default()
	var flags config.Server

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the whiteboard server",
		Long: `Run the whiteboard server until interrupted.

Settings come from the built-in defaults, then the environment (PORT,
WHITEBOARD_ADDR, ORIGIN, WHITEBOARD_ORIGIN, WHITEBOARD_SEND_BUFFER,
WHITEBOARD_RETAIN_EMPTY, WHITEBOARD_LOG_LEVEL, WHITEBOARD_LOG_FORMAT), then
flags given on the command line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv(config.Default(), os.LookupEnv)
			if err != nil {
				return err
			}
			cfg = overlayFlags(cmd, cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.ErrOrStderr(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Addr, "addr", def.Addr, "listen address")
	f.StringSliceVar(&flags.Origins, "origin", nil, "allowed WebSocket origin, repeatable (default: any)")
	f.IntVar(&flags.SendBuffer, "send-buffer", def.SendBuffer, "outbound frames queued per connection")
	f.Int64Var(&flags.ReadLimit, "read-limit", def.ReadLimit, "maximum inbound frame size in bytes")
	f.BoolVar(&flags.RetainEmpty, "retain-empty", def.RetainEmpty, "keep the board when everyone has left")
	f.StringVar(&flags.LogLevel, "log-level", def.LogLevel, "debug, info, warn or error")
	f.StringVar(&flags.LogFormat, "log-format", def.LogFormat, "text or json")
	return cmd
}

// overlayFlags copies the flags the user actually set onto cfg.
func overlayFlags(cmd *cobra.Command, cfg, flags config.Server) config.Server {
	changed := cmd.Flags().Changed
	if changed("addr") {
		cfg.Addr = flags.Addr
	}
	if changed("origin") {
		cfg.Origins = flags.Origins
	}
	if changed("send-buffer") {
		cfg.SendBuffer = flags.SendBuffer
	}
	if changed("read-limit") {
		cfg.ReadLimit = flags.ReadLimit
	}
	if changed("retain-empty") {
		cfg.RetainEmpty = flags.RetainEmpty
	}
	if changed("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
	if changed("log-format") {
		cfg.LogFormat = flags.LogFormat
	}
	return cfg
}

func runServe(logOut io.Writer, cfg config.Server) error {
	logger, err := newLogger(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting whiteboard", "version", version, "addr", cfg.Addr, "retain_empty", cfg.RetainEmpty)
	if err := server.New(cfg, logger).Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("stopped")
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("%w: log format %q", config.ErrInvalid, format)
}
