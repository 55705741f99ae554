package internal

import (
	"strings"

	"github.com/google/uuid"
)

// Normalizer validates drafts and assigns stable client message ids
type Normalizer struct{}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize trims and validates a draft. Returns nil when there is
// nothing to send (blank text and no attachments); callers treat nil
// as a no-op, not an error, and must not clear their input field.
//
// A draft that already carries a client message id is a retry and keeps
// that id; otherwise a new globally unique id is assigned.
func (n *Normalizer) Normalize(draft Draft) *NormalizedMessage {
	text := strings.TrimSpace(draft.Text)
	if text == "" && len(draft.Attachments) == 0 {
		return nil
	}

	id := draft.ClientMessageID
	if id == "" {
		id = uuid.NewString()
	}

	var attachments []Attachment
	if len(draft.Attachments) > 0 {
		attachments = make([]Attachment, len(draft.Attachments))
		copy(attachments, draft.Attachments)
	}

	return &NormalizedMessage{
		Text:            text,
		Attachments:     attachments,
		ClientMessageID: id,
	}
}
