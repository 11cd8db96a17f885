// Package simulate drives a running kiosk over HTTP with a crowd of walk-up
// participants and checks that its views agree with the submissions.
package simulate

import (
	"io"
	"time"

	"github.com/okian/challengeboard/internal/domain/model"
)

// Defaults used by cmd/simulate.
const (
	DefaultParticipants = 200
	DefaultTopN         = 3
	DefaultWorkers      = 8
	DefaultTimeout      = 10 * time.Second

	doubleTapSample      = 10
	percentageMultiplier = 100
)

// Config holds configuration for one simulation run.
type Config struct {
	BaseURL      string        // Base URL of the kiosk
	Participants int           // Valid submissions to generate
	Invalid      int           // Extra submissions with a missing measurement
	TopN         int           // Leaderboard rows to fetch and verify
	Workers      int           // Concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	Reset        bool          // Start a fresh session before submitting
	DoubleTap    bool          // Resubmit a sample of accepted ids and expect 409
	OutputFile   string        // Optional JSON dump of the generated submissions
	Verbose      bool          // Log every rejected submission
	Out          io.Writer     // Report destination; nil discards it
}

// Submission is the JSON body posted to /submissions. Numbers travel as text,
// the way the kiosk form sends them.
type Submission struct {
	SubmissionID string `json:"submission_id"`
	Name         string `json:"name"`
	Age          string `json:"age"`
	Measurement  string `json:"measurement,omitempty"`
	Feet         string `json:"feet,omitempty"`
	Inches       string `json:"inches,omitempty"`
}

// comparisonView mirrors the comparison block of a submission response.
type comparisonView struct {
	Class      string  `json:"class"`
	Average    float64 `json:"average"`
	PriorCount int     `json:"prior_count"`
	Message    string  `json:"message"`
}

// Ack is the part of a 201 response the simulator checks.
type Ack struct {
	Entry      model.Entry    `json:"entry"`
	Comparison comparisonView `json:"comparison"`
	Message    string         `json:"message"`
}

// Stats holds run statistics.
type Stats struct {
	Generated          int
	Submitted          int
	Accepted           int
	Rejected           int
	Duplicate          int
	Failed             int
	Retapped           int
	EntriesVerified    int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
