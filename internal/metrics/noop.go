package metrics

import "time"

// NoopCollector is a no-op implementation of the Collector interface.
// All methods are empty stubs that do nothing.
type NoopCollector struct{}

// RequestStarted is a no-op.
func (n *NoopCollector) RequestStarted(operation string) {}

// RequestCompleted is a no-op.
func (n *NoopCollector) RequestCompleted(operation, result string, duration time.Duration) {}

// MailboxRemediated is a no-op.
func (n *NoopCollector) MailboxRemediated(action string, success bool) {}
