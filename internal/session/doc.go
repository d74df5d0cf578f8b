// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

// Package session implements server-side sessions addressed by an opaque
// token carried in the "qid" cookie.
//
// The Session object is an explicit per-request handle: the Manager
// middleware loads it before the handler runs, hands it to handlers
// through the request context, and persists it afterwards if it was
// mutated. Session state lives in a Store (Redis in production); the
// client only ever holds the signed token.
//
// Sessions expire a fixed TTL after creation. There is no sliding
// refresh: reading a session never extends its lifetime.
package session
