package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/challengeboard/pkg/logger"
)

// submission outcomes.
const (
	resultAccepted  = "accepted"
	resultDuplicate = "duplicate"
	resultRejected  = "rejected"
	resultFailed    = "failed"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// getJSON fetches path and decodes a 200 response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// postJSON posts body to path and returns the status code and response body.
func (c *HTTPClient) postJSON(ctx context.Context, path string, body any) (int, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// submitAll posts every submission through a pool of cfg.Workers submitters
// and returns the acknowledgements of the accepted ones, keyed by submission id.
func submitAll(ctx context.Context, cfg *Config, client *HTTPClient, subs []Submission, stats *Stats) map[string]Ack {
	log := logger.Get()
	log.Info(ctx, "submitting participants", logger.Int("count", len(subs)), logger.Int("workers", cfg.Workers))

	var (
		submitted, accepted, duplicate, rejected, failed int64

		mu   sync.Mutex
		acks = make(map[string]Ack, len(subs))
		wg   sync.WaitGroup
	)

	subChan := make(chan Submission, cfg.Workers*2)
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range subChan {
				if ctx.Err() != nil {
					return
				}
				result, ack := submitSingle(ctx, cfg, client, sub)

				atomic.AddInt64(&submitted, 1)
				switch result {
				case resultAccepted:
					atomic.AddInt64(&accepted, 1)
					mu.Lock()
					acks[sub.SubmissionID] = ack
					mu.Unlock()
				case resultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				case resultRejected:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Accepted = int(atomic.LoadInt64(&accepted))
	stats.Duplicate = int(atomic.LoadInt64(&duplicate))
	stats.Rejected = int(atomic.LoadInt64(&rejected))
	stats.Failed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
	)
	return acks
}

func submitSingle(ctx context.Context, cfg *Config, client *HTTPClient, sub Submission) (string, Ack) {
	status, body, err := client.postJSON(ctx, "/submissions", sub)
	if err != nil {
		logger.Get().Warn(ctx, "submission failed", logger.String("submissionID", sub.SubmissionID), logger.Error(err))
		return resultFailed, Ack{}
	}

	switch status {
	case http.StatusCreated:
		var ack Ack
		if err := json.Unmarshal(body, &ack); err != nil {
			logger.Get().Warn(ctx, "unreadable acknowledgement", logger.Error(err))
			return resultFailed, Ack{}
		}
		return resultAccepted, ack
	case http.StatusConflict:
		return resultDuplicate, Ack{}
	case http.StatusUnprocessableEntity:
		if cfg.Verbose {
			logger.Get().Info(ctx, "submission rejected",
				logger.String("name", sub.Name),
				logger.String("reason", string(bytes.TrimSpace(body))),
			)
		}
		return resultRejected, Ack{}
	default:
		logger.Get().Warn(ctx, "unexpected status",
			logger.Int("status", status),
			logger.String("body", string(bytes.TrimSpace(body))),
		)
		return resultFailed, Ack{}
	}
}
