// Package state defines the shared application-state store the registries
// read and mutate. The store is the authoritative source for assistant and
// topic metadata; registries receive it as an injected dependency so tests
// can substitute their own.
package state

import (
	"context"
	"errors"
)

// Read paths understood by the store
const (
	PathAssistants = "assistants"
)

// ErrUnknownPath is returned by Read for a path the store does not serve
var ErrUnknownPath = errors.New("state: unknown read path")

// Accessor is the read/write contract the registries require. Dispatch
// applies exactly one action atomically; two concurrent dispatches never
// interleave within the store.
type Accessor interface {
	// Read returns the value at path. The returned value is a deep copy;
	// mutating it does not affect the store.
	Read(ctx context.Context, path string) (interface{}, error)

	// Dispatch applies an action to the store, or reports why it could not.
	Dispatch(ctx context.Context, action Action) error
}
