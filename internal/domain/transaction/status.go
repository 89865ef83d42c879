package transaction

import "fmt"

// Status is the lifecycle state of a gateway transaction row. A row only
// exists between the first charge attempt and the webhook that settles the
// invoice, so the terminal states (paid, charged back) are never stored.
type Status string

const (
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsPending() bool {
	return s == StatusPending
}

func (s Status) IsFailed() bool {
	return s == StatusFailed
}

// ParseStatus validates a raw status string from storage.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusFailed:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("invalid transaction status %q", raw)
	}
}
