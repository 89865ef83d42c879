// Package gatewaylog is the operator-facing transaction log every gateway
// action writes to. Implementations prefix descriptions in sandbox mode so
// test traffic is recognizable.
package gatewaylog

import "context"

// Statuses recorded against log entries.
const (
	StatusSuccess     = "Success"
	StatusError       = "Error"
	StatusChargedBack = "Charged Back"
)

// Recorder appends an entry to the gateway log. Raw payloads are kept for
// operator diagnostics. Recording must never fail a payment flow; callers
// log and continue on error.
type Recorder interface {
	Record(ctx context.Context, description, status string, raw map[string]any) error
}
