package internal

import "context"

// SendRequest is the outbound payload handed to the transport.
//
// ClientMessageID is the idempotency key: the backend is expected to
// deduplicate by it, which is what makes retries safe. Against a
// backend that ignores the id, retry remains advisory only.
type SendRequest struct {
	ChatID          string
	ClientMessageID string
	Text            string
	Attachments     []Attachment
	ContextHeaders  map[string]string
}

// TokenFunc receives streamed assistant tokens as they arrive
type TokenFunc func(token string)

// Transport delivers one message and streams the assistant reply back
// through onToken. On failure it returns a *TransportError that
// classifies the cause (auth-expired vs generic) and preserves the
// originating client message id.
type Transport interface {
	Send(ctx context.Context, req SendRequest, onToken TokenFunc) error
}
