package weather

import (
	"errors"
	"fmt"
)

// Reason tags a fetch failure with its cause. HTTP failures carry the
// status code in the tag itself, e.g. "http_error:503".
type Reason string

// Failure reasons returned by the client.
const (
	ReasonTimeout   Reason = "timeout"
	ReasonTransport Reason = "transport_error"
	ReasonAuth      Reason = "auth_error"
	ReasonParse     Reason = "parse_error"
)

// HTTPReason builds the reason tag for a non-success status code.
func HTTPReason(status int) Reason {
	return Reason(fmt.Sprintf("http_error:%d", status))
}

// FetchError is the typed failure for a single weather lookup. It is
// always returned as a value; the client never panics past its boundary.
type FetchError struct {
	// Reason classifies the failure.
	Reason Reason `json:"reason"`

	// Detail is a human-readable description for logs and reports.
	Detail string `json:"detail,omitempty"`

	// StatusCode is the HTTP status, when the failure came from a response.
	StatusCode int `json:"status_code,omitempty"`
}

func (e *FetchError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// AsFetchError unwraps err into a *FetchError, or wraps unknown errors
// as a transport failure so callers always see the taxonomy.
func AsFetchError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Reason: ReasonTransport, Detail: err.Error()}
}
