package notify

import (
	"context"
)

// Message is a notification for whoever watches the schedule.
type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
