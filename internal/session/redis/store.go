// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

// Package redis implements the session store on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/quibble/quibble/internal/session"
)

// keyPrefix namespaces session keys in the keyspace.
const keyPrefix = "sess:"

// Store implements session.Store using a Redis server. Expiry rides on
// the key TTL set at write time; reads use plain GET, so a session's
// lifetime is fixed at creation (no touch).
type Store struct {
	client *goredis.Client
}

// NewStore creates a Store on an existing client. The caller owns the
// client's lifecycle.
func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Load retrieves session state by token.
func (s *Store) Load(ctx context.Context, token string) (session.Data, error) {
	raw, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return session.Data{}, session.ErrNotFound
		}
		return session.Data{}, oops.Code("SESSION_LOAD_FAILED").
			With("operation", "redis get").
			Wrap(err)
	}

	var data session.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return session.Data{}, oops.Code("SESSION_CORRUPT").
			With("operation", "unmarshal session data").
			Wrap(err)
	}
	return data, nil
}

// Save writes session state with expiry fixed at session.TTL from now.
func (s *Store) Save(ctx context.Context, token string, data session.Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return oops.Code("SESSION_SAVE_FAILED").
			With("operation", "marshal session data").
			Wrap(err)
	}

	if err := s.client.Set(ctx, keyPrefix+token, raw, session.TTL).Err(); err != nil {
		return oops.Code("SESSION_SAVE_FAILED").
			With("operation", "redis set").
			Wrap(err)
	}
	return nil
}

// Destroy removes a session. Deleting an absent key is a no-op.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return oops.Code("SESSION_DESTROY_FAILED").
			With("operation", "redis del").
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ session.Store = (*Store)(nil)
