package observe

import "errors"

// Configuration errors.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
)

// Runtime errors.
var (
	ErrNilObserver      = errors.New("observe: observer is nil")
	ErrMissingStageName = errors.New("observe: stage name is required")
)

// RedactedFields lists field keys whose values never reach the log output.
var RedactedFields = []string{
	"input",
	"prompt",
	"image",
	"response",
	"password",
	"secret",
	"token",
	"session_token",
	"authorization",
	"api_key",
	"credential",
}
