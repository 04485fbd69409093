package sync

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/ashfall/tdx/internal/shared"
	"github.com/ashfall/tdx/internal/telemetry"
)

// ErrorCategory enumerates user-meaningful failure categories.
type ErrorCategory int

const (
	// CategoryNetworkUnreachable: the connection could not be established,
	// no response was received.
	CategoryNetworkUnreachable ErrorCategory = iota
	// CategoryTimeout: the response exceeded the per-request budget.
	CategoryTimeout
	// CategoryHTTPError: a response arrived with a non-success status.
	CategoryHTTPError
	// CategoryMalformedResponse: the body could not be decoded.
	CategoryMalformedResponse
	// CategoryUnknown: anything else, carrying the raw message.
	CategoryUnknown
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryNetworkUnreachable:
		return "network_unreachable"
	case CategoryTimeout:
		return "timeout"
	case CategoryHTTPError:
		return "http_error"
	case CategoryMalformedResponse:
		return "malformed_response"
	case CategoryUnknown:
		return "unknown"
	default:
		return ""
	}
}

// ErrorInfo is a classified request failure with a deterministic,
// display-ready message.
type ErrorInfo struct {
	Category ErrorCategory
	Status   int    // HTTP status, set for CategoryHTTPError
	Feed     string // which feed failed: "analytics", "anomalies", "prediction"
	Message  string
}

// Classifier maps raw request failures to [ErrorInfo]. It only labels;
// retries are left to the next scheduled tick or a manual refresh.
type Classifier struct {
	baseURL string
}

// NewClassifier creates a classifier that mentions baseURL in
// connectivity messages to aid diagnosis.
func NewClassifier(baseURL string) *Classifier {
	return &Classifier{baseURL: baseURL}
}

// Classify labels a single feed failure. Pure: equal inputs yield equal
// ErrorInfo values.
func (c *Classifier) Classify(feed string, err error) ErrorInfo {
	var statusErr *telemetry.StatusError
	var netErr net.Error
	var urlErr *url.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return ErrorInfo{
			Category: CategoryTimeout,
			Feed:     feed,
			Message:  fmt.Sprintf("the %s request timed out", feed),
		}
	case errors.As(err, &statusErr):
		return ErrorInfo{
			Category: CategoryHTTPError,
			Status:   statusErr.Code,
			Feed:     feed,
			Message:  fmt.Sprintf("the telemetry service answered the %s request with HTTP %d", feed, statusErr.Code),
		}
	case errors.Is(err, shared.ErrMalformedResponse):
		return ErrorInfo{
			Category: CategoryMalformedResponse,
			Feed:     feed,
			Message:  fmt.Sprintf("the %s response could not be decoded", feed),
		}
	case errors.As(err, &urlErr):
		// A url.Error that is neither a timeout nor a status means the
		// connection never produced a response.
		return ErrorInfo{
			Category: CategoryNetworkUnreachable,
			Feed:     feed,
			Message:  fmt.Sprintf("cannot reach the telemetry service at %s", c.baseURL),
		}
	default:
		return ErrorInfo{
			Category: CategoryUnknown,
			Feed:     feed,
			Message:  err.Error(),
		}
	}
}
