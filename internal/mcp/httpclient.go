package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/rutinify/internal/models"
)

// errNotFound marks a 404 from the REST API.
var errNotFound = errors.New("not found")

// HTTPClient implements DataSource by calling the rutinify REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// exerciseLookup is the body of the exercise lookup endpoints.
type exerciseLookup struct {
	Found    bool                     `json:"found"`
	Exercise models.CompletedExercise `json:"exercise"`
}

func (c *HTTPClient) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	var routines []models.Routine
	if err := c.get(ctx, "/api/v1/routines", nil, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (c *HTTPClient) GetRoutine(ctx context.Context, name string) (models.Routine, bool, error) {
	var r models.Routine
	err := c.get(ctx, "/api/v1/routines/"+url.PathEscape(name), nil, &r)
	if errors.Is(err, errNotFound) {
		return models.Routine{}, false, nil
	}
	if err != nil {
		return models.Routine{}, false, err
	}
	return r, true, nil
}

func (c *HTTPClient) GetHistory(ctx context.Context) ([]models.WorkoutSession, error) {
	var sessions []models.WorkoutSession
	if err := c.get(ctx, "/api/v1/history", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) GetLatestExercise(ctx context.Context, exerciseID string) (models.CompletedExercise, bool, error) {
	var res exerciseLookup
	path := "/api/v1/exercises/" + url.PathEscape(exerciseID) + "/latest"
	if err := c.get(ctx, path, nil, &res); err != nil {
		return models.CompletedExercise{}, false, err
	}
	return res.Exercise, res.Found, nil
}

func (c *HTTPClient) GetPreviousWeekExercise(ctx context.Context, exerciseID string, week int, routineName string, day int) (models.CompletedExercise, bool, error) {
	params := url.Values{}
	params.Set("routine", routineName)
	params.Set("day", strconv.Itoa(day))
	params.Set("week", strconv.Itoa(week))

	var res exerciseLookup
	path := "/api/v1/exercises/" + url.PathEscape(exerciseID) + "/previous"
	if err := c.get(ctx, path, params, &res); err != nil {
		return models.CompletedExercise{}, false, err
	}
	return res.Exercise, res.Found, nil
}

func (c *HTTPClient) GetWeekSettings(ctx context.Context) (models.WeekSettings, error) {
	var ws models.WeekSettings
	if err := c.get(ctx, "/api/v1/settings/week", nil, &ws); err != nil {
		return models.WeekSettings{}, err
	}
	return ws, nil
}
