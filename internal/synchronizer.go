package internal

import "context"

// Synchronizer replays a chat's pending message after a login
// interruption or a process restart. It runs once per chat-view mount
// and again whenever authentication transitions from absent to present.
type Synchronizer struct {
	orch  *Orchestrator
	store *SafeStore
	auth  AuthProvider
}

// NewSynchronizer creates a synchronizer for orch's chat. The store
// must be the same one the orchestrator persists pending messages to.
func NewSynchronizer(orch *Orchestrator, store *SafeStore, auth AuthProvider) *Synchronizer {
	return &Synchronizer{orch: orch, store: store, auth: auth}
}

// Sync runs the replay algorithm once. Safe to call repeatedly: the
// pending entry is removed before the send is dispatched, so a second
// run (or a crash mid-send followed by a remount) finds nothing and
// cannot double-replay.
//
// Returns true when a replay send was dispatched.
func (s *Synchronizer) Sync(ctx context.Context) bool {
	key := PendingKey(s.orch.ChatID())

	// A submit that is still resolving beats the persisted copy: the
	// in-memory reference is always at least as fresh.
	pending := s.orch.PendingRef()
	if pending == nil {
		pending = DecodePending(s.store.Get(key))
	}

	if pending == nil {
		return false
	}

	if !s.auth.IsAuthenticated() {
		s.requestLogin()
		return false
	}

	// Consume before sending. A crash between here and the send loses
	// at most this one replay; the alternative ordering risks sending
	// it twice on the next mount.
	s.store.Remove(key)
	s.orch.ClearPendingRef()

	msg := pending
	LogInfo("Replaying pending message %s for chat %s", msg.ClientMessageID, s.orch.ChatID())

	// Deferred off this call stack so the replay cannot re-enter state
	// that the detecting phase is still mutating.
	s.orch.dispatch(func() {
		s.orch.SendMessage(ctx, msg, SendOptions{})
	})
	return true
}

// requestLogin opens the login flow through the orchestrator's guard,
// so a sync cannot open a second flow when a submit already did
func (s *Synchronizer) requestLogin() {
	LogDebug("Pending message found for chat %s; requesting login", s.orch.ChatID())
	s.orch.RequestLogin()
}

// OnAuthChange reacts to an authentication transition. Only the
// absent-to-present edge triggers a replay.
func (s *Synchronizer) OnAuthChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		return
	}

	s.orch.ResetLogin()
	s.Sync(ctx)
}

// Bind subscribes the synchronizer to auth-state notifications and
// returns the cancel function
func (s *Synchronizer) Bind(ctx context.Context, events *AuthEvents) func() {
	return events.Subscribe(func(authenticated bool) {
		s.OnAuthChange(ctx, authenticated)
	})
}
