package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/rutinify/internal/importer"
)

// ErrRoutineExists is returned when the server already has a routine with
// the requested name.
var ErrRoutineExists = errors.New("routine already exists")

// RejectedError carries the row problems reported for an invalid file.
type RejectedError struct {
	Problems []importer.Problem
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("file rejected with %d problems", len(e.Problems))
}

// Client sends routine files to the rutinify server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the rutinify server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		attempts: 3,
		backoff:  time.Second,
	}
}

// ImportCSV POSTs a routine CSV to the server's import endpoint under the
// given routine name. With dryRun set the server only validates it.
// Transport errors and 5xx responses are retried with exponential backoff;
// any other failure is returned at once.
func (c *Client) ImportCSV(ctx context.Context, name string, data []byte, dryRun bool) (*importer.Stats, error) {
	params := url.Values{}
	params.Set("name", name)
	if dryRun {
		params.Set("dry_run", "true")
	}
	u := c.serverURL + "/api/v1/import?" + params.Encode()

	var lastErr error
	for attempt := range c.attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		stats, retry, err := c.post(ctx, u, data)
		if err == nil {
			return stats, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}

func (c *Client) post(ctx context.Context, u string, data []byte) (*importer.Stats, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated:
		var stats importer.Stats
		if err := json.Unmarshal(body, &stats); err != nil {
			return nil, false, fmt.Errorf("decoding import stats: %w", err)
		}
		return &stats, false, nil
	case resp.StatusCode == http.StatusConflict:
		return nil, false, ErrRoutineExists
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var rejected struct {
			Problems []importer.Problem `json:"problems"`
		}
		if err := json.Unmarshal(body, &rejected); err != nil {
			return nil, false, fmt.Errorf("decoding problems: %w", err)
		}
		return nil, false, &RejectedError{Problems: rejected.Problems}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	default:
		return nil, false, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	}
}
