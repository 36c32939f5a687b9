package notifier

import (
	"context"
	"encoding/json"
	"time"
)

// KindEmail is the task kind carrying a Notification.
const KindEmail = "email"

type Task struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	RunAt     time.Time       `json:"run_at"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
}

// Notification is an email to render from a named template.
type Notification struct {
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Params    map[string]string `json:"params"`
}

// Handler delivers one task. A returned error schedules a retry.
type Handler func(ctx context.Context, task Task) error

// Decode unmarshals the task payload into v.
func (t Task) Decode(v any) error {
	return json.Unmarshal(t.Payload, v)
}
