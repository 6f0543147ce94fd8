// Package kv defines the key-value contract the persistence layer writes
// through, with local and remote backends behind the same interface.
package kv

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("kv: store unavailable")

// Store is a durable string key-value slot provider. Get reports presence
// separately from failure so an absent key is not an error.
type Store interface {
	Probe(ctx context.Context) error
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
