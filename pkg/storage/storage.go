// Package storage is the persistent key-value layer behind client state.
// Each visitor owns two slots (session and cart) that are read, written and
// removed independently.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Key names one persisted slot of a visitor's state.
type Key string

const (
	KeySession Key = "session"
	KeyCart    Key = "cart"
)

// ErrNotFound is returned by Read when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the per-visitor adapter the cart and session managers persist through.
type Store interface {
	Read(ctx context.Context, key Key) ([]byte, error)
	Write(ctx context.Context, key Key, value []byte) error
	Remove(ctx context.Context, key Key) error
}

// Backend holds the entries of every visitor.
type Backend interface {
	Get(ctx context.Context, visitorID string, key Key) ([]byte, error)
	Put(ctx context.Context, visitorID string, key Key, value []byte) error
	Delete(ctx context.Context, visitorID string, key Key) error
	Ping(ctx context.Context) error
}

// Scope binds a backend to one visitor.
func Scope(backend Backend, visitorID string) (Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("storage backend required")
	}
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return nil, fmt.Errorf("visitor id required")
	}
	return &scoped{backend: backend, visitorID: visitorID}, nil
}

type scoped struct {
	backend   Backend
	visitorID string
}

func (s *scoped) Read(ctx context.Context, key Key) ([]byte, error) {
	return s.backend.Get(ctx, s.visitorID, key)
}

func (s *scoped) Write(ctx context.Context, key Key, value []byte) error {
	return s.backend.Put(ctx, s.visitorID, key, value)
}

func (s *scoped) Remove(ctx context.Context, key Key) error {
	return s.backend.Delete(ctx, s.visitorID, key)
}
