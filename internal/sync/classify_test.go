package sync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashfall/tdx/internal/shared"
	"github.com/ashfall/tdx/internal/telemetry"
)

func TestClassifier(t *testing.T) {
	classifier := NewClassifier("http://sensors.local:8000")

	t.Run("Timeout", func(t *testing.T) {
		t.Run("Deadline Exceeded", func(t *testing.T) {
			info := classifier.Classify("analytics", fmt.Errorf("request failed: %w", context.DeadlineExceeded))

			assert.Equal(t, CategoryTimeout, info.Category)
			assert.Equal(t, "analytics", info.Feed)
			assert.Equal(t, "the analytics request timed out", info.Message)
		})

		t.Run("URL Error Wrapping Deadline", func(t *testing.T) {
			err := &url.Error{Op: "Get", URL: "http://sensors.local:8000/predict", Err: context.DeadlineExceeded}
			info := classifier.Classify("prediction", err)

			assert.Equal(t, CategoryTimeout, info.Category)
			assert.Equal(t, "the prediction request timed out", info.Message)
		})
	})

	t.Run("HTTP Error Carries Status", func(t *testing.T) {
		info := classifier.Classify("anomalies", &telemetry.StatusError{Code: 503, Path: "/anomalies"})

		assert.Equal(t, CategoryHTTPError, info.Category)
		assert.Equal(t, 503, info.Status)
		assert.Equal(t, "the telemetry service answered the anomalies request with HTTP 503", info.Message)
	})

	t.Run("Malformed Response", func(t *testing.T) {
		err := fmt.Errorf("%w: /analytics: unexpected end of JSON input", shared.ErrMalformedResponse)
		info := classifier.Classify("analytics", err)

		assert.Equal(t, CategoryMalformedResponse, info.Category)
		assert.Equal(t, "the analytics response could not be decoded", info.Message)
	})

	t.Run("Network Unreachable Mentions BaseURL", func(t *testing.T) {
		err := &url.Error{Op: "Get", URL: "http://sensors.local:8000/analytics", Err: errors.New("connection refused")}
		info := classifier.Classify("analytics", err)

		assert.Equal(t, CategoryNetworkUnreachable, info.Category)
		assert.Contains(t, info.Message, "http://sensors.local:8000")
	})

	t.Run("Unknown Keeps Raw Message", func(t *testing.T) {
		info := classifier.Classify("prediction", errors.New("something odd"))

		assert.Equal(t, CategoryUnknown, info.Category)
		assert.Equal(t, "something odd", info.Message)
	})

	t.Run("Deterministic", func(t *testing.T) {
		err := &telemetry.StatusError{Code: 500, Path: "/analytics"}

		first := classifier.Classify("analytics", err)
		second := classifier.Classify("analytics", err)
		assert.Equal(t, first, second)
	})
}
