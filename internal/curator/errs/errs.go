// Package errs defines the sentinel errors used across activities and
// workflows to distinguish deliberately-handled conditions from
// ordinary Go errors that should trigger a Temporal retry.
package errs

import "errors"

var (
	// ErrNotFound marks a REST 404: callers treat it as silent success
	// (zero value, nil error), never as a retryable failure.
	ErrNotFound = errors.New("curator: resource not found")

	// ErrDependencyUnavailable marks a downstream dependency (search
	// index, translator, graph backend) reporting itself unavailable
	// (e.g. 503). restapi.Client does not map any status code to it, so
	// no activity currently receives it.
	ErrDependencyUnavailable = errors.New("curator: dependency unavailable")

	// ErrCancelled marks cooperative cancellation observed inside an
	// activity (as opposed to a Temporal-level CanceledError). Only
	// NotifyProgress uses this to build its silent-success output.
	ErrCancelled = errors.New("curator: cancelled")

	// ErrFeatureDisabled marks a feature gated by an empty model id in
	// config: empty research/embedding model means "disabled", not
	// "use default".
	ErrFeatureDisabled = errors.New("curator: feature disabled by configuration")
)

// ClientError wraps a REST 4xx (non-404) response. Activities return it
// inside a structured {Success:false, Error: err.Error()} output field
// rather than as the activity's Go error, so Temporal does not retry it.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}
