package internal

import "strings"

// Attachment describes an already-uploaded file attached to a message.
// Upload itself happens elsewhere; the courier only carries descriptors.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
	Mime string `json:"mime,omitempty"`
}

// Draft represents raw user input before normalization
type Draft struct {
	Text            string
	Attachments     []Attachment
	ClientMessageID string
}

// NormalizedMessage is a validated message ready for delivery.
// ClientMessageID is immutable once assigned and is reused verbatim
// across retries of the same logical send.
type NormalizedMessage struct {
	Text            string       `json:"text"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	ClientMessageID string       `json:"clientMessageId"`
}

// ChatIntent carries a first message and its creation context, captured
// before a chat id exists (e.g. "start a new chat with this message")
type ChatIntent struct {
	TopicKey    string             `json:"topicKey"`
	Message     *NormalizedMessage `json:"message,omitempty"`
	ContextData map[string]string  `json:"contextData,omitempty"`
}

// InlineError is the single visible error affordance for a chat.
// At most one exists at a time; a newer failure overwrites it.
type InlineError struct {
	Message        string
	RetryMessage   *NormalizedMessage
	IsSessionError bool
}

const (
	pendingKeyPrefix = "chat:pending:"
	intentKeyPrefix  = "chat:intent:"
)

// PendingKey returns the store key holding a chat's pending message
func PendingKey(chatID string) string {
	return pendingKeyPrefix + chatID
}

// IntentKey returns the store key holding a topic's chat intent
func IntentKey(topicKey string) string {
	return intentKeyPrefix + topicKey
}

// ParsePendingKey extracts the chat id from a pending key.
// Returns false for keys outside the pending namespace.
func ParsePendingKey(key string) (string, bool) {
	if !strings.HasPrefix(key, pendingKeyPrefix) {
		return "", false
	}
	chatID := key[len(pendingKeyPrefix):]
	if chatID == "" {
		return "", false
	}
	return chatID, true
}

// ParseIntentKey extracts the topic key from an intent key
func ParseIntentKey(key string) (string, bool) {
	if !strings.HasPrefix(key, intentKeyPrefix) {
		return "", false
	}
	topicKey := key[len(intentKeyPrefix):]
	if topicKey == "" {
		return "", false
	}
	return topicKey, true
}
