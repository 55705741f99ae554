package internal

// SaveIntent persists a chat intent under its topic key, overwriting
// any previous intent for the same topic. Used when a message is
// composed before a chat id exists, so both the message and its
// creation context survive an external login redirect.
func SaveIntent(intents *SafeStore, intent *ChatIntent) {
	if intent == nil || intent.TopicKey == "" {
		return
	}
	intents.Set(IntentKey(intent.TopicKey), EncodeIntent(intent))
}

// LoadIntent reads the intent for topicKey without consuming it.
// Returns nil when absent or malformed.
func LoadIntent(intents *SafeStore, topicKey string) *ChatIntent {
	return DecodeIntent(intents.Get(IntentKey(topicKey)))
}

// AdoptIntent consumes the intent for topicKey and moves its message
// into chatID's pending slot, to be replayed by the synchronizer on the
// next sync. The intent is removed before the handoff so it can never
// be adopted twice, even across a reload.
//
// Returns the adopted intent, or nil when none existed.
func AdoptIntent(intents, pending *SafeStore, topicKey, chatID string) *ChatIntent {
	key := IntentKey(topicKey)
	intent := DecodeIntent(intents.Get(key))
	if intent == nil {
		// Clear malformed leftovers so they do not linger forever
		intents.Remove(key)
		return nil
	}

	intents.Remove(key)

	if intent.Message != nil {
		pending.Set(PendingKey(chatID), EncodePending(intent.Message))
		LogInfo("Adopted intent %s into chat %s (message %s)",
			topicKey, chatID, intent.Message.ClientMessageID)
	}

	return intent
}
