package simulate

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/pkg/logger"
)

// Ranges for generated participants.
const (
	minAge   = 8
	ageRange = 60

	// Grip strength in tenths of a pound: 20.0 - 150.0 lbs.
	minGripTenths   = 200
	gripTenthsRange = 1300

	minFeet   = 1
	feetRange = 3
	maxInches = 12
)

var firstNames = []string{ //nolint:gochecknoglobals // name pool for generated participants
	"Ann", "Bo", "Cy", "Dee", "Eli", "Fay", "Gus", "Hana", "Ivo", "Jo",
	"Kai", "Lea", "Max", "Nia", "Oz", "Pia", "Quin", "Rae", "Sol", "Tia",
}

// randomInt returns a uniform int in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateSubmissions creates the configured number of valid submissions for
// kind, followed by cfg.Invalid submissions missing their measurement.
func generateSubmissions(ctx context.Context, cfg *Config, kind measure.Kind, stats *Stats) ([]Submission, error) {
	logger.Get().Info(ctx, "generating submissions",
		logger.Int("participants", cfg.Participants),
		logger.Int("invalid", cfg.Invalid),
		logger.String("kind", kind.Name()),
	)

	total := cfg.Participants + cfg.Invalid
	subs := make([]Submission, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		sub := generateSingleSubmission(i, kind)
		if i >= cfg.Participants {
			sub.Measurement, sub.Feet, sub.Inches = "", "", ""
		}
		subs = append(subs, sub)
	}

	stats.Generated = len(subs)
	return subs, nil
}

func generateSingleSubmission(index int, kind measure.Kind) Submission {
	sub := Submission{
		SubmissionID: uuid.NewString(),
		Name:         firstNames[index%len(firstNames)] + " " + strconv.Itoa(index+1),
		Age:          strconv.Itoa(minAge + randomInt(ageRange)),
	}
	if kind.Name() == measure.KindFeetInches {
		sub.Feet = strconv.Itoa(minFeet + randomInt(feetRange))
		sub.Inches = strconv.Itoa(randomInt(maxInches))
		return sub
	}
	tenths := minGripTenths + randomInt(gripTenthsRange)
	sub.Measurement = strconv.FormatFloat(float64(tenths)/10, 'f', 1, 64)
	return sub
}
