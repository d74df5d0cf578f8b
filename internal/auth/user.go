// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package auth

import (
	"context"
	"time"
)

// Credential length constraints. These are the only constraints: no
// charset or format restrictions on either field.
const (
	MinUsernameLength = 3
	MinPasswordLength = 4
)

// User is a persisted account. The ID is assigned by the store on
// creation; Username is unique across all users. PasswordHash holds the
// argon2id hash, never the plaintext.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Credentials is the transient register/login payload. The plaintext
// password is discarded after hashing or verification.
type Credentials struct {
	Username string
	Password string
}

// FieldError describes one validation or business-rule failure tied to a
// named input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidateCredentials runs the stateless input checks that must pass
// before any I/O. The username is checked before the password and
// validation stops at the first failure, so at most one FieldError is
// produced per call. Returns nil when both fields are acceptable.
func ValidateCredentials(creds Credentials) *FieldError {
	if len(creds.Username) < MinUsernameLength {
		return &FieldError{Field: "username", Message: "username too short"}
	}
	if len(creds.Password) < MinPasswordLength {
		return &FieldError{Field: "password", Message: "password too short"}
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create inserts a new user and returns it with the store-assigned ID.
	// A duplicate username yields ErrUsernameTaken; insertion is atomic,
	// so concurrent registrations of the same name produce exactly one user.
	Create(ctx context.Context, username, passwordHash string) (*User, error)

	// GetByID retrieves a user by ID. Returns ErrNotFound on miss.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername retrieves a user by exact username. Returns ErrNotFound
	// on miss.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
