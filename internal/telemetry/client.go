package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ashfall/tdx/internal/models"
	"github.com/ashfall/tdx/internal/shared"
)

const defaultBaseURL string = "http://localhost:8000"

// defaultReadingLimit matches the backend's own default for recent rows.
const defaultReadingLimit = 50

// StatusError reports a response that arrived with a non-success status.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.Path)
}

// Client is a typed client for the sensor analytics backend's feed endpoints.
type Client struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// NewClient creates a feed client. An empty baseURL falls back to the local
// backend default, a non-positive limit to the backend's row default, and a
// nil client to [http.DefaultClient].
func NewClient(baseURL string, limit int, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if limit <= 0 {
		limit = defaultReadingLimit
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		limit:      limit,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured endpoint base, used in diagnostics messages.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchAnalytics retrieves the aggregated analytics summary.
func (c *Client) FetchAnalytics(ctx context.Context) (*models.AnalyticsSummary, error) {
	body, err := c.get(ctx, "/analytics", url.Values{"limit": {strconv.Itoa(c.limit)}})
	if err != nil {
		return nil, err
	}

	var summary models.AnalyticsSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("%w: /analytics: %v", shared.ErrMalformedResponse, err)
	}

	return &summary, nil
}

// FetchAnomalies retrieves the anomaly list. A syntactically valid body that
// is not a JSON array is treated as an empty set, not an error; an empty set
// is the "system healthy" state.
func (c *Client) FetchAnomalies(ctx context.Context) ([]models.AnomalyRecord, error) {
	body, err := c.get(ctx, "/anomalies", url.Values{"limit": {strconv.Itoa(c.limit)}})
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: /anomalies: %v", shared.ErrMalformedResponse, err)
	}

	if _, ok := raw.([]any); !ok {
		return []models.AnomalyRecord{}, nil
	}

	var anomalies []models.AnomalyRecord
	if err := json.Unmarshal(body, &anomalies); err != nil {
		return nil, fmt.Errorf("%w: /anomalies: %v", shared.ErrMalformedResponse, err)
	}
	if anomalies == nil {
		anomalies = []models.AnomalyRecord{}
	}

	return anomalies, nil
}

// FetchPrediction retrieves the short-term temperature prediction. A null
// prediction field is valid and means "insufficient data".
func (c *Client) FetchPrediction(ctx context.Context) (*models.PredictionResult, error) {
	body, err := c.get(ctx, "/predict", nil)
	if err != nil {
		return nil, err
	}

	var prediction models.PredictionResult
	if err := json.Unmarshal(body, &prediction); err != nil {
		return nil, fmt.Errorf("%w: /predict: %v", shared.ErrMalformedResponse, err)
	}

	return &prediction, nil
}

// Health retrieves the backend liveness status.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	body, err := c.get(ctx, "/health", nil)
	if err != nil {
		return nil, err
	}

	var health models.HealthStatus
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("%w: /health: %v", shared.ErrMalformedResponse, err)
	}

	return &health, nil
}

// DebugStatus retrieves the backend's data and model status.
func (c *Client) DebugStatus(ctx context.Context) (*models.DebugStatus, error) {
	body, err := c.get(ctx, "/debug/status", nil)
	if err != nil {
		return nil, err
	}

	var status models.DebugStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: /debug/status: %v", shared.ErrMalformedResponse, err)
	}

	return &status, nil
}

// get performs a GET against path and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
