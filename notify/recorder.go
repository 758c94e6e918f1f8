package notify

import (
	"context"
	"sync"

	"github.com/c360/workplan/errors"
)

// Recorder is an in-memory Sender for tests. It records every message and
// can be told to fail deliveries.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	fail     bool
}

var _ Sender = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records msg, or fails if FailDeliveries was called.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.ErrNotificationFailed
	}
	r.messages = append(r.messages, msg)
	return nil
}

// FailDeliveries makes subsequent sends fail.
func (r *Recorder) FailDeliveries() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = true
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
