package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/resend/resend-go/v2"
)

// DefaultSendTimeout bounds one provider call so a slow API never holds up a form submission.
const DefaultSendTimeout = 10 * time.Second

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client  *resend.Client
	apiKey  string
	from    string
	timeout time.Duration
}

// ResendOption customises a ResendSender.
type ResendOption func(*ResendSender)

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) ResendOption {
	return func(s *ResendSender) {
		base := s.client.BaseURL
		s.client = resend.NewCustomClient(hc, s.apiKey)
		s.client.BaseURL = base
	}
}

// WithBaseURL points the sender at another API endpoint. Invalid URLs are ignored.
func WithBaseURL(raw string) ResendOption {
	return func(s *ResendSender) {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return
		}
		if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
			u.Path += "/"
		}
		s.client.BaseURL = u
	}
}

// WithSendTimeout overrides DefaultSendTimeout. Non-positive values are ignored.
func WithSendTimeout(d time.Duration) ResendOption {
	return func(s *ResendSender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewResendSender creates a ResendSender with the given API key and default from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from string, opts ...ResendOption) *ResendSender {
	s := &ResendSender{
		client:  resend.NewClient(apiKey),
		apiKey:  apiKey,
		from:    from,
		timeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send sends a single email via Resend.
// PRE: msg has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := msg.validate(); err != nil {
		return Result{}, err
	}
	from := msg.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
		Tags:    resendTags(msg.Tags),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "to", msg.To, "subject", msg.Subject)
		return Result{}, fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("resend_sent", "message_id", sent.Id, "to", msg.To, "subject", msg.Subject)
	return Result{
		MessageID: sent.Id,
		SentAt:    time.Now(),
	}, nil
}

// resendTags converts tags in key order so requests are reproducible.
func resendTags(tags map[string]string) []resend.Tag {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]resend.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, resend.Tag{Name: k, Value: tags[k]})
	}
	return out
}
