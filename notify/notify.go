package notify

import (
	"context"
)

type Type int

const (
	Alarm Type = iota
	Metric
	// Audit records an administrative change to the blocklist.
	Audit
)

func (nt Type) String() string {
	switch nt {
	case Alarm:
		return "Alarm"
	case Metric:
		return "Metric"
	case Audit:
		return "Audit"
	default:
		return "Unknown"
	}
}

type Notification struct {
	Type    Type
	Source  string
	Message string
	Fields  map[string]interface{}
}

// Notifier defines the contract for sending alarms and audit events.
// Implementations of this interface are responsible for formatting and dispatching
// notifications to their respective backends.
// Implementations MUST be safe for concurrent use by multiple goroutines.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NilNotifier discards every notification. It is used when no backend is
// configured.
type NilNotifier struct{}

func NewNilNotifier() *NilNotifier {
	return &NilNotifier{}
}

func (n *NilNotifier) Send(ctx context.Context, notification Notification) error {
	return nil
}
