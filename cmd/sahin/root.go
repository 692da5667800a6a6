package main

import (
	"fmt"
	"os"

	"github.com/hakim/sahin/internal/config"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// version is stamped into reports and the --version output.
const version = "1.0.0"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  hclog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sahin",
	Short: "Port, subdomain and path reconnaissance pipeline",
	Long: `Sahin drives nmap, subfinder and feroxbuster/gobuster against a target
domain, probes discovered subdomains for liveness, brute-forces paths on the
live web hosts and produces one risk-annotated report per run.

Every stage can be skipped and none of the tools is strictly required: a
missing tool only degrades its own stage. Past runs are kept in a local
database so history and diff work across scans.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(verbose)

		// Skip config loading for commands that don't need it
		skipConfig := map[string]bool{
			"check":   true,
			"init":    true,
			"help":    true,
			"version": true,
		}

		if skipConfig[cmd.Name()] {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Debug("config loaded", "db", cfg.DBPath, "reports", cfg.ReportDir)

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: search for sahin.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")

	rootCmd.Version = version
}

// newLogger returns the diagnostic logger. Progress output goes through the
// event renderer; hclog only carries debug traces and internal warnings.
func newLogger(debug bool) hclog.Logger {
	level := hclog.Warn
	if debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "sahin",
		Output: os.Stderr,
		Level:  level,
	})
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
