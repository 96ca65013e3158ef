package email

import (
	"context"
	"errors"
	"time"
)

// Message is one outbound email.
type Message struct {
	To      []string // Recipient addresses
	From    string   // Overrides the sender default when set
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	// Tags are attached to the provider message for filtering delivery logs.
	// Keys and values are limited to ASCII letters, digits, '_' and '-'.
	Tags map[string]string
}

// Result is what the provider reported for an accepted message.
type Result struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

var ErrNoRecipients = errors.New("email: message has no recipients")

// validate checks what every sender requires before handing a message off.
func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	return nil
}
