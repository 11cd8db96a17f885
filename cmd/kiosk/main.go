// Package main is the entry point for the kiosk CLI.
//
// Usage:
//
//	kiosk serve                      # Start the kiosk server
//	kiosk serve --config event.yaml  # Layer a YAML file under KIOSK_* env vars
//	kiosk config                     # Print the effective configuration
//	kiosk version                    # Show version info
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Walk-up challenge kiosk with a live leaderboard",
	Long: `kiosk records athletic-challenge results at an event booth and shows
how each participant compares with the crowd so far, a bar chart of every
entry and the top 3.

Configuration is layered: defaults, then an optional YAML file
(--config or KIOSK_CONFIG), then KIOSK_* environment variables. A .env file
is read first when present.

Quick start:
  1. Run: kiosk serve
  2. Open http://localhost:8080 on the kiosk tablet`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return loadEnvFile(envFile)
	},
}

// loadEnvFile reads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "kiosk %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file read before configuration is loaded")
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file (overrides KIOSK_CONFIG)")
	rootCmd.AddCommand(versionCmd)
}
