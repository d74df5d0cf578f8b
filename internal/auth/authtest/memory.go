// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

// Package authtest provides an in-memory user repository for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/quibble/quibble/internal/auth"
)

// MemoryUserRepository is a map-backed auth.UserRepository with the same
// uniqueness semantics as the Postgres implementation. The error fields,
// when set, force the corresponding operation to fail with an
// unexpected error.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*auth.User
	byName map[string]*auth.User

	CreateErr error
	GetErr    error
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID: 1,
		byID:   make(map[int64]*auth.User),
		byName: make(map[string]*auth.User),
	}
}

// Create implements auth.UserRepository.
func (r *MemoryUserRepository) Create(_ context.Context, username, passwordHash string) (*auth.User, error) {
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[username]; exists {
		return nil, auth.ErrUsernameTaken
	}

	user := &auth.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.byID[user.ID] = user
	r.byName[username] = user

	clone := *user
	return &clone, nil
}

// GetByID implements auth.UserRepository.
func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*auth.User, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// GetByUsername implements auth.UserRepository.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byName[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// Count returns the number of stored users.
func (r *MemoryUserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Delete removes a user, for tests exercising dangling sessions.
func (r *MemoryUserRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byID[id]; ok {
		delete(r.byName, user.Username)
		delete(r.byID, id)
	}
}

// Compile-time interface check.
var _ auth.UserRepository = (*MemoryUserRepository)(nil)
