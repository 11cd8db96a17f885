package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/types"
	"github.com/okian/challengeboard/internal/pipeline"
	"github.com/okian/challengeboard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes one full simulation and verification pass.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.TopN < 1 {
		cfg.TopN = DefaultTopN
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}

	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()
	log.Info(ctx, "starting kiosk simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("participants", cfg.Participants),
		logger.Int("invalid", cfg.Invalid),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("reset", cfg.Reset),
		logger.Bool("doubleTap", cfg.DoubleTap),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Learn the challenge kind, optionally on a fresh session
	var info pipeline.Info
	if cfg.Reset {
		status, body, err := client.postJSON(ctx, "/session/reset", nil)
		if err != nil {
			return stats, fmt.Errorf("session reset failed: %w", err)
		}
		if status != http.StatusOK {
			return stats, fmt.Errorf("session reset failed: HTTP %d", status)
		}
		if err := json.Unmarshal(body, &info); err != nil {
			return stats, fmt.Errorf("failed to parse session: %w", err)
		}
	} else if err := client.getJSON(ctx, "/session", &info); err != nil {
		return stats, fmt.Errorf("session lookup failed: %w", err)
	}
	kind, err := measure.Lookup(info.Kind)
	if err != nil {
		return stats, err
	}

	// Step 3: Generate and submit
	subs, err := generateSubmissions(ctx, cfg, kind, stats)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}
	if err := saveSubmissionsToFile(ctx, cfg.OutputFile, subs); err != nil {
		log.Warn(ctx, "failed to save submissions to file", logger.Error(err))
	}
	acks := submitAll(ctx, cfg, client, subs, stats)

	// Step 4: Double-tap a sample; every resubmission must be refused
	if cfg.DoubleTap {
		if err := doubleTap(ctx, cfg, client, subs, acks, stats); err != nil {
			return stats, err
		}
	}

	// Step 5: Verify entries, comparisons and the leaderboard
	var entries []model.Entry
	if err := client.getJSON(ctx, "/entries", &entries); err != nil {
		return stats, fmt.Errorf("entries retrieval failed: %w", err)
	}
	if err := verifyEntries(ctx, cfg, kind, entries, acks, stats); err != nil {
		return stats, err
	}

	var board []types.Standing
	if err := client.getJSON(ctx, fmt.Sprintf("/leaderboard?limit=%d", cfg.TopN), &board); err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(board)
	if err := verifyLeaderboard(ctx, kind, entries, board, cfg.TopN); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	writeReport(out, stats, board)

	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// doubleTap resubmits up to doubleTapSample accepted submissions unchanged.
func doubleTap(ctx context.Context, cfg *Config, client *HTTPClient, subs []Submission, acks map[string]Ack, stats *Stats) error {
	for _, sub := range subs {
		if stats.Retapped >= doubleTapSample {
			break
		}
		if _, ok := acks[sub.SubmissionID]; !ok {
			continue
		}
		result, _ := submitSingle(ctx, cfg, client, sub)
		if result != resultDuplicate {
			return fmt.Errorf("%w: resubmitting %s was %s, expected duplicate", ErrMismatch, sub.SubmissionID, result)
		}
		stats.Retapped++
	}
	return nil
}

// saveSubmissionsToFile writes the generated submissions as a JSON array.
func saveSubmissionsToFile(ctx context.Context, filename string, subs []Submission) error {
	if filename == "" {
		return nil
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	logger.Get().Info(ctx, "submissions saved to file", logger.String("filename", filename))
	return nil
}

// writeReport prints the final statistics and the verified podium.
func writeReport(w io.Writer, stats *Stats, board []types.Standing) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	fmt.Fprintf(w, "Simulation finished in %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  generated:  %s\n", humanize.Comma(int64(stats.Generated)))
	fmt.Fprintf(w, "  submitted:  %s (%s/s)\n", humanize.Comma(int64(stats.Submitted)), humanize.FormatFloat("#,###.#", perSecond))
	fmt.Fprintf(w, "  accepted:   %s (%s%%)\n", humanize.Comma(int64(stats.Accepted)), humanize.FormatFloat("#,###.#", acceptRate))
	fmt.Fprintf(w, "  rejected:   %s\n", humanize.Comma(int64(stats.Rejected)))
	fmt.Fprintf(w, "  duplicate:  %s (%d double-taps refused)\n", humanize.Comma(int64(stats.Duplicate)), stats.Retapped)
	fmt.Fprintf(w, "  failed:     %s\n", humanize.Comma(int64(stats.Failed)))
	fmt.Fprintf(w, "  verified:   %s comparisons\n", humanize.Comma(int64(stats.EntriesVerified)))

	for _, row := range board {
		fmt.Fprintf(w, "  %s %s  %s  %s\n", row.Place, row.Medal, row.Name, row.DisplayValue)
	}
}
