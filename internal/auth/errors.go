// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package auth

import "errors"

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned by UserRepository.Create when the
	// username violates the uniqueness constraint. It is the only
	// persistence failure handled as a business error; everything else
	// propagates as an unexpected failure.
	ErrUsernameTaken = errors.New("username taken")
)
