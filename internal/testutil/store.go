package testutil

import (
	"context"
	"sync"

	"github.com/roach88/sqlmongo/internal/literal"
)

// FindCall records one Find against a FakeStore.
type FindCall struct {
	Collection string
	Filter     *literal.Mapping
	Projection *literal.Mapping
}

// FakeStore is an in-memory store that returns a collection's documents
// unfiltered and records every call. Use store.Store when filter
// semantics matter.
type FakeStore struct {
	Collections map[string][]*literal.Mapping
	PingErr     error
	FindErr     error

	mu    sync.Mutex
	pings int
	finds []FindCall
}

// NewFakeStore creates an empty reachable store.
func NewFakeStore() *FakeStore {
	return &FakeStore{Collections: make(map[string][]*literal.Mapping)}
}

// Ping returns PingErr.
func (f *FakeStore) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.PingErr
}

// Find returns FindErr or the collection's documents.
func (f *FakeStore) Find(ctx context.Context, collection string, filter, projection *literal.Mapping) ([]*literal.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds = append(f.finds, FindCall{Collection: collection, Filter: filter, Projection: projection})
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	return f.Collections[collection], nil
}

// Pings returns how many times Ping was called.
func (f *FakeStore) Pings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

// Finds returns the recorded Find calls, in order.
func (f *FakeStore) Finds() []FindCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FindCall, len(f.finds))
	copy(out, f.finds)
	return out
}
