package internal

import (
	"context"
	"sync"
)

// DeliveryState identifies the orchestrator's position in the send
// lifecycle for one chat
type DeliveryState int

const (
	StateIdle DeliveryState = iota
	StateSending
	StateErrorInline
	StateAuthExpired
)

// String returns a human-readable state name
func (s DeliveryState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateErrorInline:
		return "error"
	case StateAuthExpired:
		return "auth-expired"
	default:
		return "unknown"
	}
}

// SendOptions adjusts a single delivery attempt
type SendOptions struct {
	// ReplaceMessageID overwrites an already-rendered message instead
	// of appending a fresh one. Set on retries of the message the UI
	// last showed as failed.
	ReplaceMessageID string
}

// Orchestrator drives the compose, send, success/error/auth-expired
// lifecycle for a single chat. It exclusively owns the inline error and
// the last-attempted message for the lifetime of one chat view.
//
// Concurrent submits proceed independently: there is no in-flight
// queueing, and the backend deduplicates by client message id. The
// guarantee is at-most-once per id, not at-most-one in flight per chat.
type Orchestrator struct {
	chatID     string
	normalizer *Normalizer
	store      *SafeStore
	transport  Transport
	auth       AuthProvider

	transcript     *Transcript
	onToken        TokenFunc
	contextHeaders func() map[string]string

	// dispatch schedules asynchronous work; replaced in tests to run
	// inline
	dispatch func(fn func())
	wg       sync.WaitGroup

	mu            sync.Mutex
	state         DeliveryState
	inlineError   *InlineError
	lastAttempted *NormalizedMessage
	pendingRef    *NormalizedMessage
	loginPending  bool
	lastOpts      SendOptions
}

// NewOrchestrator creates an orchestrator for chatID. The store must be
// fail-soft wrapped; transport failures surface as inline errors, never
// as panics or returned errors.
func NewOrchestrator(chatID string, store *SafeStore, transport Transport, auth AuthProvider) *Orchestrator {
	o := &Orchestrator{
		chatID:     chatID,
		normalizer: NewNormalizer(),
		store:      store,
		transport:  transport,
		auth:       auth,
		state:      StateIdle,
	}
	o.dispatch = func(fn func()) {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			fn()
		}()
	}
	return o
}

// SetTranscript attaches the visible message list to reconcile into
func (o *Orchestrator) SetTranscript(t *Transcript) {
	o.transcript = t
}

// SetTokenSink sets the receiver for streamed assistant tokens
func (o *Orchestrator) SetTokenSink(fn TokenFunc) {
	o.onToken = fn
}

// SetContextHeaders sets the context-priming collaborator whose
// key-value pairs ride along on every send
func (o *Orchestrator) SetContextHeaders(fn func() map[string]string) {
	o.contextHeaders = fn
}

// ChatID returns the chat this orchestrator serves
func (o *Orchestrator) ChatID() string {
	return o.chatID
}

// State returns the current delivery state
func (o *Orchestrator) State() DeliveryState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// InlineError returns the current error affordance, or nil
func (o *Orchestrator) InlineError() *InlineError {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inlineError == nil {
		return nil
	}
	copied := *o.inlineError
	return &copied
}

// PendingRef returns the in-memory pending message set by a recent
// submit that is still resolving, or nil
func (o *Orchestrator) PendingRef() *NormalizedMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pendingRef
}

// ClearPendingRef drops the in-memory pending reference once it has
// been consumed
func (o *Orchestrator) ClearPendingRef() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pendingRef = nil
}

// RequestLogin opens the login flow at most once per unauthenticated
// period. The guard is shared by every caller that can notice a missing
// session (submit, sync, retry), so two of them together still open a
// single flow.
func (o *Orchestrator) RequestLogin() {
	o.mu.Lock()
	already := o.loginPending
	o.loginPending = true
	o.mu.Unlock()

	if !already {
		o.auth.StartLogin()
	}
}

// ResetLogin clears the pending-login guard after authentication
// completes, so a later expiry can open a new login flow
func (o *Orchestrator) ResetLogin() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loginPending = false
}

// Wait blocks until all dispatched sends have settled. Used by the CLI
// before reading final state; a UI host would instead observe state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Submit normalizes and dispatches a draft.
//
// Returns false when nothing was dispatched: an empty draft (no-op) or
// an unauthenticated submit (message persisted, login started). Callers
// must keep their input field intact on false; on true the send is in
// flight and the input may be cleared optimistically.
func (o *Orchestrator) Submit(ctx context.Context, draft Draft) bool {
	msg := o.normalizer.Normalize(draft)
	if msg == nil {
		return false
	}

	if !o.auth.IsAuthenticated() {
		o.stashForLogin(msg)
		return false
	}

	o.mu.Lock()
	o.inlineError = nil
	o.state = StateSending
	o.mu.Unlock()

	o.dispatch(func() {
		o.SendMessage(ctx, msg, SendOptions{})
	})
	return true
}

// stashForLogin persists msg and opens the login flow at most once
func (o *Orchestrator) stashForLogin(msg *NormalizedMessage) {
	o.mu.Lock()
	o.pendingRef = msg
	o.mu.Unlock()

	o.store.Set(PendingKey(o.chatID), EncodePending(msg))
	LogDebug("Stashed message %s for chat %s pending login", msg.ClientMessageID, o.chatID)

	o.RequestLogin()
}

// SendMessage delivers msg through the transport. It is the sole path
// that talks to the transport adapter. All failures surface through the
// inline error state; SendMessage never returns an error to its caller.
func (o *Orchestrator) SendMessage(ctx context.Context, msg *NormalizedMessage, opts SendOptions) {
	o.mu.Lock()
	o.inlineError = nil
	o.lastAttempted = msg
	o.lastOpts = opts
	o.state = StateSending
	onToken := o.onToken
	o.mu.Unlock()

	replyID := msg.ClientMessageID + ":reply"
	if o.transcript != nil {
		entry := Entry{ClientMessageID: msg.ClientMessageID, Actor: "user", Content: msg.Text}
		if opts.ReplaceMessageID != "" {
			o.transcript.Replace(opts.ReplaceMessageID, entry)
		} else {
			o.transcript.Upsert(entry)
		}
		// A retried send restarts the reply stream from scratch
		o.transcript.ResetContent(replyID)
	}

	req := SendRequest{
		ChatID:          o.chatID,
		ClientMessageID: msg.ClientMessageID,
		Text:            msg.Text,
		Attachments:     msg.Attachments,
	}
	if o.contextHeaders != nil {
		req.ContextHeaders = o.contextHeaders()
	}

	err := o.transport.Send(ctx, req, func(token string) {
		if o.transcript != nil {
			o.transcript.AppendContent(replyID, token)
		}
		if onToken != nil {
			onToken(token)
		}
	})

	if err == nil {
		o.mu.Lock()
		o.state = StateIdle
		if o.pendingRef != nil && o.pendingRef.ClientMessageID == msg.ClientMessageID {
			o.pendingRef = nil
		}
		o.mu.Unlock()
		LogDebug("Delivered message %s to chat %s", msg.ClientMessageID, o.chatID)
		return
	}

	if o.transcript != nil {
		o.transcript.MarkFailed(msg.ClientMessageID)
	}

	if IsAuthExpired(err) {
		LogInfo("Send of %s hit expired session: %v", msg.ClientMessageID, err)
		o.HandleAuthExpired()
		return
	}

	LogWarn("Send of %s failed: %v", msg.ClientMessageID, err)
	o.mu.Lock()
	o.state = StateErrorInline
	o.inlineError = &InlineError{
		Message:      "Your message could not be sent.",
		RetryMessage: msg,
	}
	o.mu.Unlock()
}

// HandleAuthExpired is invoked when the transport classifies a failure
// as an expired identity credential. It persists the last attempted
// message so a full login redirect cannot lose it, and flags a session
// error. It never retries on its own: replay is user- or
// synchronizer-driven only.
func (o *Orchestrator) HandleAuthExpired() {
	o.mu.Lock()
	msg := o.lastAttempted
	o.state = StateAuthExpired
	o.inlineError = &InlineError{
		Message:        "Your session expired. Reconnect to send your message.",
		RetryMessage:   msg,
		IsSessionError: true,
	}
	o.pendingRef = msg
	o.mu.Unlock()

	if msg != nil {
		o.store.Set(PendingKey(o.chatID), EncodePending(msg))
	}
}

// Retry re-sends the message referenced by the current inline error,
// reusing its client message id so the backend sees a single logical
// send. When that message is still the last attempted one, its id is
// passed as the replace target so the failed bubble is overwritten
// rather than duplicated; when a newer send superseded it, the retry
// appends fresh.
//
// Returns false when there is nothing to retry, or when the session is
// still expired; in the latter case the login flow is reopened and the
// message stays pending.
func (o *Orchestrator) Retry(ctx context.Context) bool {
	o.mu.Lock()
	ie := o.inlineError
	last := o.lastAttempted
	o.mu.Unlock()

	if ie == nil || ie.RetryMessage == nil {
		return false
	}

	// An expired session cannot be retried until a new one exists. The
	// message is already persisted; (re)open the login flow instead of
	// handing the transport a send that can only fail the same way.
	if ie.IsSessionError && !o.auth.IsAuthenticated() {
		o.RequestLogin()
		return false
	}

	msg := ie.RetryMessage
	opts := SendOptions{}
	if last != nil && last.ClientMessageID == msg.ClientMessageID {
		opts.ReplaceMessageID = msg.ClientMessageID
	}

	o.dispatch(func() {
		o.SendMessage(ctx, msg, opts)
	})
	return true
}
