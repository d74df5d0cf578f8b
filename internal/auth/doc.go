// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

// Package auth provides the identity core of Quibble: user accounts,
// credential validation, password hashing, and the register/login/me
// operations exposed through the GraphQL surface.
//
// The Service methods return a Result that carries either a user or a
// list of field errors, never both. A non-nil Go error from a Service
// method is an unexpected infrastructure failure and is surfaced to the
// caller as a generic server error; expected business failures (short
// username, taken username, bad password) always travel as field errors
// inside the Result.
package auth
