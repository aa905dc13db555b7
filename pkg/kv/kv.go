package kv

import (
	"context"
	"errors"
)

// ErrNotFound signals that a key has never been written or was deleted.
var ErrNotFound = errors.New("kv: key not found")

// Store is the durable key-value surface the cart persists through.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
