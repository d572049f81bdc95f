package config

import (
	"errors"

	"github.com/jpalmerr/mifi-exporter"
)

// ErrNoTarget is returned by [Config.Options] when the configuration names
// no target.
var ErrNoTarget = errors.New("target is required")

// Options converts parsed configuration into exporter options.
//
// Only settings present in the file are emitted, so the exporter's own
// defaults apply to the rest. Callers append their own options afterwards
// to override individual settings.
func (c *Config) Options() ([]mifiexporter.Option, error) {
	if c.Target == "" {
		return nil, ErrNoTarget
	}

	opts := []mifiexporter.Option{
		mifiexporter.WithTargetAddress(c.Target),
	}

	if c.Interval != 0 {
		opts = append(opts, mifiexporter.WithInterval(c.Interval.Duration()))
	}

	if c.Timeout != 0 {
		opts = append(opts, mifiexporter.WithTimeout(c.Timeout.Duration()))
	}

	if c.Port != 0 {
		opts = append(opts, mifiexporter.WithPort(c.Port))
	}

	if c.ListenAddress != "" {
		opts = append(opts, mifiexporter.WithListenAddress(c.ListenAddress))
	}

	return opts, nil
}
