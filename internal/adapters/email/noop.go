package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them.
// Used whenever no provider key is configured. Sent messages are kept in memory
// so local runs can inspect what staff would have received.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the message but does not deliver it.
// POST: Returns a noop result, or ErrNoRecipients
func (s *NoopSender) Send(_ context.Context, msg Message) (Result, error) {
	if err := msg.validate(); err != nil {
		return Result{}, err
	}
	now := time.Now()
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()

	slog.Info("noop_email_send", "to", msg.To, "subject", msg.Subject, "tags", msg.Tags)
	return Result{
		MessageID: fmt.Sprintf("noop-%d-%d", now.UnixNano(), n),
		SentAt:    now,
	}, nil
}

// Sent returns a copy of every message accepted so far.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
