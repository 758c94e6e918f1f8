package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/c360/workplan/natsclient"
)

// SubjectPrefix is the NATS subject prefix notification messages publish
// under; the kind is appended as the final token.
const SubjectPrefix = "workplan.notifications"

// NATSSender publishes rendered messages onto NATS for the delivery worker
// that owns the actual email providers.
type NATSSender struct {
	client *natsclient.Client
}

// NewNATSSender creates a sender over an established NATS client.
func NewNATSSender(client *natsclient.Client) *NATSSender {
	return &NATSSender{client: client}
}

var _ Sender = (*NATSSender)(nil)

// Send publishes msg to the kind-specific subject.
func (s *NATSSender) Send(_ context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	subject := fmt.Sprintf("%s.%s", SubjectPrefix, msg.Kind)
	if err := s.client.Publish(subject, data); err != nil {
		return fmt.Errorf("publish notification to %s: %w", subject, err)
	}
	return nil
}
