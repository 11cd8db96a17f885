package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/challengeboard/internal/simulate"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:8080", "Base URL of the kiosk")
		participants = flag.Int("participants", simulate.DefaultParticipants, "Valid submissions to generate")
		invalid      = flag.Int("invalid", 0, "Extra submissions with a missing measurement")
		topN         = flag.Int("top", simulate.DefaultTopN, "Leaderboard rows to verify")
		workers      = flag.Int("workers", simulate.DefaultWorkers, "Concurrent submitters")
		timeout      = flag.Duration("timeout", simulate.DefaultTimeout, "HTTP request timeout")
		reset        = flag.Bool("reset", true, "Start a fresh session first")
		doubleTap    = flag.Bool("double-tap", true, "Resubmit accepted ids and expect 409")
		outputFile   = flag.String("output", "", "Write the generated submissions to this JSON file")
		logFile      = flag.String("log", "", "Also write log lines to this file")
		verbose      = flag.Bool("verbose", false, "Log every rejected submission")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp(os.Stdout)
		return
	}

	closeLog, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)

	cfg := &simulate.Config{
		BaseURL:      *baseURL,
		Participants: *participants,
		Invalid:      *invalid,
		TopN:         *topN,
		Workers:      *workers,
		Timeout:      *timeout,
		Reset:        *reset,
		DoubleTap:    *doubleTap,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
		Out:          os.Stdout,
	}

	_, err = simulate.Run(ctx, cfg)
	cancel()
	stop()
	_ = closeLog()
	if err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
