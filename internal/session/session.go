// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package session

import (
	"context"
	"time"
)

// CookieName is the session cookie name.
const CookieName = "qid"

// TTL is the fixed session lifetime, counted from creation. The cookie
// MaxAge matches it exactly (315360000 seconds).
const TTL = 10 * 365 * 24 * time.Hour

// Data is the state persisted in the session store. A nil UserID means
// the session is anonymous (such sessions are never persisted).
type Data struct {
	UserID    *int64    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the mutable per-request session object. It is owned by the
// Manager for the lifetime of one request; handlers mutate it through
// SetUserID and Destroy, and the Manager is the sole writer back to the
// store.
type Session struct {
	token     string
	data      Data
	dirty     bool
	destroyed bool
}

// New creates an empty anonymous session. Nothing is persisted until a
// handler writes to it.
func New() *Session {
	return &Session{data: Data{CreatedAt: time.Now().UTC()}}
}

// Resume wraps state loaded from the store under an existing token.
func Resume(token string, data Data) *Session {
	return &Session{token: token, data: data}
}

// UserID returns the authenticated user ID, or false for an anonymous
// session.
func (s *Session) UserID() (int64, bool) {
	if s.data.UserID == nil {
		return 0, false
	}
	return *s.data.UserID, true
}

// SetUserID authenticates the session as the given user and marks it
// for persistence.
func (s *Session) SetUserID(id int64) {
	uid := id
	s.data.UserID = &uid
	s.dirty = true
	s.destroyed = false
}

// Destroy marks the session for removal from the store and clears its
// identity. The cookie is expired when the request completes.
func (s *Session) Destroy() {
	s.data.UserID = nil
	s.dirty = false
	s.destroyed = true
}

// Token returns the store token the session was resumed under, or ""
// for a session that has not been persisted yet.
func (s *Session) Token() string { return s.token }

// Dirty reports whether the session has unpersisted mutations.
func (s *Session) Dirty() bool { return s.dirty }

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool { return s.destroyed }

// Snapshot returns the state to persist.
func (s *Session) Snapshot() Data { return s.data }

type ctxKey struct{}

// NewContext returns ctx carrying the session handle.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session handle placed by the Manager.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}
