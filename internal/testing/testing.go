// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/ashfall/tdx/internal/models"
)

// StubFeedClient is a test double for [sync.FeedClient]. Each fetch func is
// optional; nil funcs return zero values.
type StubFeedClient struct {
	Base           string
	AnalyticsFunc  func(ctx context.Context) (*models.AnalyticsSummary, error)
	AnomaliesFunc  func(ctx context.Context) ([]models.AnomalyRecord, error)
	PredictionFunc func(ctx context.Context) (*models.PredictionResult, error)
}

func (s *StubFeedClient) BaseURL() string {
	if s.Base == "" {
		return "http://localhost:8000"
	}
	return s.Base
}

func (s *StubFeedClient) FetchAnalytics(ctx context.Context) (*models.AnalyticsSummary, error) {
	if s.AnalyticsFunc == nil {
		return &models.AnalyticsSummary{}, nil
	}
	return s.AnalyticsFunc(ctx)
}

func (s *StubFeedClient) FetchAnomalies(ctx context.Context) ([]models.AnomalyRecord, error) {
	if s.AnomaliesFunc == nil {
		return []models.AnomalyRecord{}, nil
	}
	return s.AnomaliesFunc(ctx)
}

func (s *StubFeedClient) FetchPrediction(ctx context.Context) (*models.PredictionResult, error) {
	if s.PredictionFunc == nil {
		return &models.PredictionResult{}, nil
	}
	return s.PredictionFunc(ctx)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
