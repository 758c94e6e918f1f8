// Package notify delivers owner notifications for workload assignment
// changes. Delivery is always best-effort: callers record the outcome on the
// workload document and move on, they never fail a mutation over it.
package notify

import (
	"context"
	"log/slog"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/resource"
)

// Kind selects the notification template.
type Kind string

// Notification kinds.
const (
	KindAssigned Kind = "assign"
	KindCanceled Kind = "cancel"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	To      string `json:"to"`
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Sender delivers rendered messages. Implementations decide the transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Service renders and dispatches workload notifications.
type Service struct {
	sender Sender
	logger *slog.Logger
}

// NewService creates a Service delivering through sender.
func NewService(sender Sender, opts ...ServiceOption) *Service {
	s := &Service{sender: sender, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// Notify renders the template for kind and sends it to the workload's owner.
// The recipient comes from the workload itself, so callers notifying a
// previous owner pass a copy with that owner set.
func (s *Service) Notify(ctx context.Context, kind Kind, w resource.Workload, clientName string) error {
	msg, err := Render(kind, w, clientName)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn("notification delivery failed",
			"workload_id", w.ID, "to", msg.To, "kind", kind, "error", err)
		return errors.WrapDependency(errors.ErrNotificationFailed, "notify", string(kind),
			"deliver notification for workload "+w.ID)
	}
	return nil
}
