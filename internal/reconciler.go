package internal

import "sync"

// Entry is one visible message in a chat transcript
type Entry struct {
	ClientMessageID string
	Actor           string // "user", "assistant"
	Content         string
	Failed          bool
}

// Transcript is the ordered, id-deduplicated view of a chat.
// Completions may resolve out of order; entries are reconciled by
// client message id, never by arrival order, so a retry or a duplicate
// completion collapses into one visible bubble.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	index   map[string]int
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{index: make(map[string]int)}
}

// Upsert replaces the entry with the same client message id in place,
// or appends when the id is new
func (t *Transcript) Upsert(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.upsertLocked(e)
}

func (t *Transcript) upsertLocked(e Entry) {
	if i, ok := t.index[e.ClientMessageID]; ok {
		t.entries[i] = e
		return
	}
	t.index[e.ClientMessageID] = len(t.entries)
	t.entries = append(t.entries, e)
}

// Replace removes the entry under oldID and upserts e. Used when a
// retry must overwrite a previously rendered failed bubble that
// carries a different id than the replacement.
func (t *Transcript) Replace(oldID string, e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if oldID != "" && oldID != e.ClientMessageID {
		if i, ok := t.index[oldID]; ok {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			delete(t.index, oldID)
			for id, j := range t.index {
				if j > i {
					t.index[id] = j - 1
				}
			}
		}
	}

	t.upsertLocked(e)
}

// AppendContent appends streamed content to the entry under id,
// creating an assistant entry if none exists yet
func (t *Transcript) AppendContent(id, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.index[id]; ok {
		t.entries[i].Content += content
		return
	}
	t.upsertLocked(Entry{ClientMessageID: id, Actor: "assistant", Content: content})
}

// ResetContent clears the accumulated content of the entry under id, if
// present. Used when a stream restarts for the same logical reply, so
// the new tokens do not append onto a stale partial.
func (t *Transcript) ResetContent(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.index[id]; ok {
		t.entries[i].Content = ""
		t.entries[i].Failed = false
	}
}

// MarkFailed flags the entry under id as failed, if present
func (t *Transcript) MarkFailed(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.index[id]; ok {
		t.entries[i].Failed = true
	}
}

// Entries returns a copy of the visible message list
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of visible messages
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
