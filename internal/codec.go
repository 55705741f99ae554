package internal

import "encoding/json"

// EncodePending serializes a message for persistence.
// Returns the empty string if the message cannot be represented, so a
// broken encode degrades to "nothing stored" rather than a crash.
func EncodePending(msg *NormalizedMessage) string {
	if msg == nil {
		return ""
	}
	data, err := json.Marshal(msg)
	if err != nil {
		LogWarn("Failed to encode pending message %s: %v", msg.ClientMessageID, err)
		return ""
	}
	return string(data)
}

// DecodePending parses a persisted pending message.
// Returns nil on empty or malformed input, never panics. A corrupt
// store entry degrades to "nothing pending".
func DecodePending(value string) *NormalizedMessage {
	if value == "" {
		return nil
	}

	var msg NormalizedMessage
	if err := json.Unmarshal([]byte(value), &msg); err != nil {
		LogDebug("Discarding malformed pending message: %v", err)
		return nil
	}

	// An entry without a client id cannot be retried idempotently
	if msg.ClientMessageID == "" {
		LogDebug("Discarding pending message without client id")
		return nil
	}

	return &msg
}

// EncodeIntent serializes a chat intent for persistence
func EncodeIntent(intent *ChatIntent) string {
	if intent == nil {
		return ""
	}
	data, err := json.Marshal(intent)
	if err != nil {
		LogWarn("Failed to encode intent %s: %v", intent.TopicKey, err)
		return ""
	}
	return string(data)
}

// DecodeIntent parses a persisted chat intent. Returns nil on empty or
// malformed input.
func DecodeIntent(value string) *ChatIntent {
	if value == "" {
		return nil
	}

	var intent ChatIntent
	if err := json.Unmarshal([]byte(value), &intent); err != nil {
		LogDebug("Discarding malformed intent: %v", err)
		return nil
	}

	if intent.TopicKey == "" {
		return nil
	}

	return &intent
}
