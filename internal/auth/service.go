// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/quibble/quibble/internal/session"
)

// Result is the outcome of a register/login operation: exactly one of
// User or Errors is set. Expected business failures travel in Errors;
// unexpected failures are returned as a Go error alongside a nil Result.
type Result struct {
	User   *User
	Errors []FieldError
}

func fieldFailure(field, message string) *Result {
	return &Result{Errors: []FieldError{{Field: field, Message: message}}}
}

// Service implements the auth operations. It holds no mutable state of
// its own; all mutation goes through the user repository and the
// caller's session object.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default.
func NewService(users UserRepository, hasher PasswordHasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, hasher: hasher, logger: logger}
}

// Register validates the credentials, hashes the password, and creates
// the user. On success the session is authenticated as the new user.
// Validation failures and duplicate usernames come back as field errors
// with no store write and no session mutation.
func (s *Service) Register(ctx context.Context, creds Credentials, sess *session.Session) (*Result, error) {
	if fe := ValidateCredentials(creds); fe != nil {
		return &Result{Errors: []FieldError{*fe}}, nil
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, oops.Code("AUTH_HASH_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := s.users.Create(ctx, creds.Username, hash)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return fieldFailure("username", "username already taken"), nil
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			With("username", creds.Username).
			Wrap(err)
	}

	sess.SetUserID(user.ID)
	return &Result{User: user}, nil
}

// Login looks the user up by username and verifies the password. On
// success the session is authenticated as the matched user.
//
// The two failure messages differ on purpose: "username does not exist"
// reveals more than "invalid login" does. That asymmetry is inherited
// product behavior; unifying it is a product decision, not a code one.
func (s *Service) Login(ctx context.Context, creds Credentials, sess *session.Session) (*Result, error) {
	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fieldFailure("username", "username does not exist"), nil
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		// A stored hash the verifier cannot parse counts as a failed
		// verification, not a server error.
		s.logger.Warn("stored password hash rejected by verifier",
			"user_id", user.ID, "error", err)
		valid = false
	}
	if !valid {
		return fieldFailure("password", "invalid login"), nil
	}

	sess.SetUserID(user.ID)
	return &Result{User: user}, nil
}

// Me resolves the session to its user. An anonymous session returns
// (nil, nil). A session pointing at a user that no longer exists is
// indistinguishable from anonymous and also returns (nil, nil).
func (s *Service) Me(ctx context.Context, sess *session.Session) (*User, error) {
	id, ok := sess.UserID()
	if !ok {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("AUTH_ME_FAILED").
			With("operation", "get user by id").
			With("user_id", id).
			Wrap(err)
	}
	return user, nil
}

// Logout marks the session destroyed. The middleware removes it from
// the store and expires the cookie when the request completes.
func (s *Service) Logout(_ context.Context, sess *session.Session) bool {
	sess.Destroy()
	return true
}
