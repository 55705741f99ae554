package internal

import (
	"os"
	"sync"
)

// AuthProvider exposes the external identity/login flow. StartLogin is
// fire and forget: completion is observed only through AuthEvents, not
// a callback or return value.
type AuthProvider interface {
	IsAuthenticated() bool
	IdentityToken() string
	StartLogin()
}

// AuthEvents notifies subscribers when the authenticated state changes.
// The synchronizer subscribes to replay pending messages on the
// absent-to-present transition.
type AuthEvents struct {
	mu   sync.Mutex
	next int
	subs map[int]func(authenticated bool)
}

// NewAuthEvents creates an empty subscription list
func NewAuthEvents() *AuthEvents {
	return &AuthEvents{subs: make(map[int]func(bool))}
}

// Subscribe registers fn for auth-state notifications and returns a
// cancel function
func (e *AuthEvents) Subscribe(fn func(authenticated bool)) func() {
	e.mu.Lock()
	id := e.next
	e.next++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Notify delivers the new auth state to all subscribers. Callbacks run
// outside the lock so they may subscribe or cancel.
func (e *AuthEvents) Notify(authenticated bool) {
	e.mu.Lock()
	fns := make([]func(bool), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(authenticated)
	}
}

// EnvAuthProvider reads the identity token from an environment
// variable. StartLogin can only point the user at the fix; the next
// invocation observes the new token.
type EnvAuthProvider struct {
	// Var is the environment variable holding the identity token
	Var string
}

// NewEnvAuthProvider creates a provider reading token from envVar
func NewEnvAuthProvider(envVar string) *EnvAuthProvider {
	return &EnvAuthProvider{Var: envVar}
}

func (p *EnvAuthProvider) IsAuthenticated() bool {
	return p.IdentityToken() != ""
}

func (p *EnvAuthProvider) IdentityToken() string {
	return os.Getenv(p.Var)
}

func (p *EnvAuthProvider) StartLogin() {
	LogWarn("Not authenticated: set %s and rerun; your message is kept and will be replayed", p.Var)
}
