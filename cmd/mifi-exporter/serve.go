package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jpalmerr/mifi-exporter"
	"github.com/jpalmerr/mifi-exporter/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// registerServeFlags adds the exporter flags to cmd.
func registerServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("config", "c", "", "path to config file")
	flags.Bool("debug", false, "enable debug logging")
	flags.Float64("interval", mifiexporter.DefaultInterval.Seconds(), "seconds between probes (minimum 1)")
	flags.Float64("timeout", 0, "probe timeout in seconds (default half the interval)")
	flags.Int("port", mifiexporter.DefaultPort, "port to serve metrics on")
	flags.String("listen-address", "", "address to serve metrics on (default all interfaces)")
}

// resolveConfig merges the config file, explicitly set flags and the
// positional target, in increasing order of precedence.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	flags := cmd.Flags()

	var (
		cfg *config.Config
		err error
	)
	if path, _ := flags.GetString("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		// an empty document yields the defaults
		cfg, err = config.Parse(nil)
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("interval") {
		secs, _ := flags.GetFloat64("interval")
		cfg.Interval = config.Duration(config.Seconds(secs))
	}
	if flags.Changed("timeout") {
		secs, _ := flags.GetFloat64("timeout")
		cfg.Timeout = config.Duration(config.Seconds(secs))
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("listen-address") {
		cfg.ListenAddress, _ = flags.GetString("listen-address")
	}

	if len(args) > 0 {
		cfg.Target = strings.TrimSpace(args[0])
	}

	// overrides bypass Parse, so check the merged result again
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Debug)

	opts, err := cfg.Options()
	if err != nil {
		return fmt.Errorf("no target given: pass TARGET or set target in the config file: %w", err)
	}
	opts = append(opts, mifiexporter.WithLogger(logger))

	exp, err := mifiexporter.New(opts...)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting exporter",
		"target", exp.Target().String(),
		"port", exp.Port(),
		"interval", exp.Interval().String(),
		"timeout", exp.Timeout().String(),
	)

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- exp.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("exporter error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("exporter error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
