package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send one notification email.
type SendRequest struct {
	To      []string // Recipient addresses (guardian email, fallback contact)
	From    string   // Sender address (e.g. "CU Bio Academy <noreply@cubioacademy.com>")
	Subject string
	HTML    string // HTML body
	ReplyTo string // Reply-to address
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
