package internal

import (
	"errors"
	"fmt"
)

// TransportError represents a classified delivery failure. The client
// message id of the originating send is preserved on every failure so
// retries stay idempotent.
type TransportError struct {
	ClientMessageID string
	Status          int  // HTTP status when known, 0 otherwise
	AuthExpired     bool // stale/invalid identity credential
	Err             error
}

func (e *TransportError) Error() string {
	kind := "delivery"
	if e.AuthExpired {
		kind = "auth-expired"
	}
	return fmt.Sprintf("transport error [%s] message %s: %v", kind, e.ClientMessageID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuthExpired reports whether err is a transport failure caused by a
// stale identity credential, as opposed to a generic delivery failure
func IsAuthExpired(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.AuthExpired
}

// StoreError represents errors accessing a persistence backend
type StoreError struct {
	Op  string // "get", "set", "remove", "list"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
