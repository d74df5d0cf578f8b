// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

// Package sessiontest provides an in-memory session store for tests.
package sessiontest

import (
	"context"
	"sync"

	"github.com/quibble/quibble/internal/session"
)

// MemoryStore is a map-backed session.Store. The error fields, when set,
// force the corresponding operation to fail.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]session.Data

	LoadErr    error
	SaveErr    error
	DestroyErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]session.Data)}
}

// Load implements session.Store.
func (m *MemoryStore) Load(_ context.Context, token string) (session.Data, error) {
	if m.LoadErr != nil {
		return session.Data{}, m.LoadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[token]
	if !ok {
		return session.Data{}, session.ErrNotFound
	}
	return data, nil
}

// Save implements session.Store.
func (m *MemoryStore) Save(_ context.Context, token string, data session.Data) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[token] = data
	return nil
}

// Destroy implements session.Store.
func (m *MemoryStore) Destroy(_ context.Context, token string) error {
	if m.DestroyErr != nil {
		return m.DestroyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, token)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// Get returns the stored state for a token.
func (m *MemoryStore) Get(token string) (session.Data, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[token]
	return data, ok
}

// Compile-time interface check.
var _ session.Store = (*MemoryStore)(nil)
