// Package main is the entry point for the mifi-exporter CLI.
//
// The exporter can be embedded as a library or run as this standalone
// binary, configured with flags, a YAML file, or both.
//
// Usage:
//
//	mifi-exporter 192.168.0.1                  # probe a device every 60s
//	mifi-exporter -c mifi.yaml --debug         # settings from a file
//	mifi-exporter validate -c mifi.yaml        # validate configuration
//	mifi-exporter version                      # show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd probes the target and serves metrics until interrupted.
var rootCmd = &cobra.Command{
	Use:   "mifi-exporter [flags] [TARGET]",
	Short: "Prometheus exporter for a mobile hotspot's web interface",
	Long: `mifi-exporter probes the HTTP interface of a single device and
publishes the results as Prometheus gauges.

Every interval it issues GET http://TARGET/ and records whether the device
answered, how long it took and the status code it returned. The metrics
are served on http://0.0.0.0:6123/ (and /metrics) by default.

TARGET must be an IPv4 or IPv6 literal. It may also be set with target:
in the config file; the argument wins when both are present.

Example config:
  target: 192.168.0.1
  interval: 30s
  port: 6123`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runServe,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this mifi-exporter binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mifi-exporter %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

func init() {
	registerServeFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)
}
