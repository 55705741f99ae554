package internal

import (
	"context"
	"sync"
)

// CreateTestMessage creates a normalized message with a fixed client id
func CreateTestMessage(id, text string) *NormalizedMessage {
	return &NormalizedMessage{
		Text:            text,
		ClientMessageID: id,
	}
}

// ScriptedTransport is a Transport that replays a scripted sequence of
// results and records every request it sees
type ScriptedTransport struct {
	mu       sync.Mutex
	results  []error
	tokens   []string
	requests []SendRequest

	// OnSend, when set, runs before each result is returned. Useful to
	// assert store state at the moment of the send.
	OnSend func(req SendRequest)
}

// NewScriptedTransport creates a transport that returns the given
// results in order, then nil forever
func NewScriptedTransport(results ...error) *ScriptedTransport {
	return &ScriptedTransport{results: results}
}

// SetTokens sets the tokens streamed on every successful send
func (s *ScriptedTransport) SetTokens(tokens ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
}

func (s *ScriptedTransport) Send(ctx context.Context, req SendRequest, onToken TokenFunc) error {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	var result error
	if len(s.results) > 0 {
		result = s.results[0]
		s.results = s.results[1:]
	}
	tokens := s.tokens
	onSend := s.OnSend
	s.mu.Unlock()

	if onSend != nil {
		onSend(req)
	}

	if result != nil {
		return result
	}
	for _, token := range tokens {
		if onToken != nil {
			onToken(token)
		}
	}
	return nil
}

// Requests returns a copy of every request received so far
func (s *ScriptedTransport) Requests() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SendRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// FakeAuth is an AuthProvider with settable state that records login
// requests
type FakeAuth struct {
	mu            sync.Mutex
	authenticated bool
	token         string
	loginCalls    int

	// Events, when set, is notified on SetAuthenticated transitions
	Events *AuthEvents
}

// NewFakeAuth creates a FakeAuth in the given starting state
func NewFakeAuth(authenticated bool) *FakeAuth {
	fa := &FakeAuth{authenticated: authenticated}
	if authenticated {
		fa.token = "test-token"
	}
	return fa
}

func (f *FakeAuth) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *FakeAuth) IdentityToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *FakeAuth) StartLogin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
}

// LoginCalls returns how many times StartLogin was invoked
func (f *FakeAuth) LoginCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

// SetAuthenticated flips the auth state and notifies Events when bound
func (f *FakeAuth) SetAuthenticated(authenticated bool) {
	f.mu.Lock()
	f.authenticated = authenticated
	if authenticated {
		f.token = "test-token"
	} else {
		f.token = ""
	}
	events := f.Events
	f.mu.Unlock()

	if events != nil {
		events.Notify(authenticated)
	}
}

// runInline makes an orchestrator execute dispatched sends
// synchronously so tests can assert state right after the call
func runInline(o *Orchestrator) {
	o.dispatch = func(fn func()) { fn() }
}
