// Package metrics provides interfaces and implementations for
// collecting remediation metrics. This package defines the Collector
// interface for recording metrics and the Server interface for
// exposing them.
package metrics

import (
	"context"
	"time"
)

// Collector defines the interface for recording remediation metrics.
type Collector interface {
	// EWS request metrics
	RequestStarted(operation string)
	RequestCompleted(operation, result string, duration time.Duration)

	// Remediation outcome metrics (one event per individual mailbox
	// acted on)
	MailboxRemediated(action string, success bool)
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is
	// canceled or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
