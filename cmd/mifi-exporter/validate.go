package main

import (
	"fmt"

	"github.com/jpalmerr/mifi-exporter"
	"github.com/jpalmerr/mifi-exporter/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the exporter.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a mifi-exporter configuration file without starting it.

This command parses the YAML, expands environment variables, and checks
every field. A file without a target is valid, since the target can be
given on the command line.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  mifi-exporter validate -c mifi.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	target := "(none, pass TARGET on the command line)"
	if cfg.Target != "" {
		target = mifiexporter.MustParseTarget(cfg.Target).URL()
	}

	timeout := cfg.Timeout.Duration()
	if timeout == 0 {
		timeout = cfg.Interval.Duration() / 2
	}

	listen := cfg.ListenAddress
	if listen == "" {
		listen = "all interfaces"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Target:   %s\n", target)
	fmt.Fprintf(out, "  Interval: %s\n", cfg.Interval.Duration())
	fmt.Fprintf(out, "  Timeout:  %s\n", timeout)
	fmt.Fprintf(out, "  Listen:   %s port %d\n", listen, cfg.Port)

	return nil
}
