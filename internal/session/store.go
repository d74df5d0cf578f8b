// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Load when no session exists under the
// token (never created, expired, or destroyed).
var ErrNotFound = errors.New("session not found")

// Store persists session state under opaque tokens. Implementations are
// externally synchronized key-value services; any store with TTL support
// satisfies the contract.
type Store interface {
	// Load retrieves the session state for a token. Returns ErrNotFound
	// on miss. Loading must not refresh the session's expiry.
	Load(ctx context.Context, token string) (Data, error)

	// Save writes the session state with expiry fixed at TTL from now.
	Save(ctx context.Context, token string, data Data) error

	// Destroy removes the session. Destroying an absent token is not an
	// error.
	Destroy(ctx context.Context, token string) error
}
