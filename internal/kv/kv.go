// Package kv defines the string key/value backend used by the counter store
// and provides in-memory and Redis implementations.
package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends that have been closed.
var ErrClosed = errors.New("kv: store closed")

// Store is a string key/value backend. Values are preserved verbatim.
// Get reports ok=false when the key does not exist.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Lister is implemented by backends that can enumerate keys by prefix.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ConditionalSetter is implemented by backends with an atomic
// set-if-absent.
type ConditionalSetter interface {
	SetNX(ctx context.Context, key, value string) (bool, error)
}

// SetIfAbsent writes value only when key does not exist yet. It reports
// whether the value was written.
func SetIfAbsent(ctx context.Context, s Store, key, value string) (bool, error) {
	if cs, ok := s.(ConditionalSetter); ok {
		return cs.SetNX(ctx, key, value)
	}

	_, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := s.Set(ctx, key, value); err != nil {
		return false, err
	}
	return true, nil
}
