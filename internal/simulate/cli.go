package simulate

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/challengeboard/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log lines to stderr and, when logFile is set, to that
// file too. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	w := io.Writer(os.Stderr)
	closeLog := func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeLog = f.Close
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	return closeLog, logger.SetLevelString(level)
}

// ShowHelp prints usage information for the simulator.
func ShowHelp(w io.Writer) {
	fmt.Fprint(w, `Kiosk Walk-up Simulator
=======================

Submits a crowd of generated participants to a running kiosk and verifies
the store order, every comparison message and the leaderboard.

Usage:
  simulate [options]

Options:
  -url string        Base URL of the kiosk (default "http://localhost:8080")
  -participants int  Valid submissions to generate (default 200)
  -invalid int       Extra submissions with a missing measurement (default 0)
  -top int           Leaderboard rows to verify (default 3)
  -workers int       Concurrent submitters (default 8)
  -timeout duration  HTTP request timeout (default 10s)
  -reset             Start a fresh session first (default true)
  -double-tap        Resubmit accepted ids and expect 409 (default true)
  -output string     Write the generated submissions to this JSON file
  -log string        Also write log lines to this file
  -verbose           Log every rejected submission
  -help              Show this help message

Examples:
  simulate -participants 500 -workers 16
  simulate -url http://kiosk.local:8080 -invalid 20 -top 10
`)
}
