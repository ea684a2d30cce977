package notify

import "context"

// Payload is a user-facing notification. Category lets connected clients
// route it (birthday, reminder, almanac, toast).
type Payload struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	UserID   string `json:"userId,omitempty"`
	GroupID  string `json:"groupId,omitempty"`
	Category string `json:"category"`
	RecordID string `json:"recordId,omitempty"`
}

// EventSink receives every payload the dispatcher emits, whether or not a
// platform channel is enabled.
type EventSink interface {
	Publish(ctx context.Context, p Payload)
}

type nopSink struct{}

func (nopSink) Publish(context.Context, Payload) {}
