// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/samber/oops"
)

// tokenBytes is the raw token length; hex-encoded tokens are 64 chars.
const tokenBytes = 32

// ErrInvalidCookie is returned when a cookie value is malformed or its
// signature does not verify. Callers treat it as "no cookie".
var ErrInvalidCookie = oops.Code("SESSION_INVALID_COOKIE").Errorf("invalid session cookie")

// NewToken creates a cryptographically random session token.
func NewToken() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	return hex.EncodeToString(raw), nil
}

// signToken computes the hex HMAC-SHA256 of the token under the
// process-wide session secret.
func signToken(token string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// EncodeCookie produces the client-held cookie value "<token>.<sig>".
// The store only ever sees the bare token; the signature binds the
// cookie to the configured secret.
func EncodeCookie(token string, secret []byte) string {
	return token + "." + signToken(token, secret)
}

// DecodeCookie verifies a cookie value and returns the bare token.
// Uses a constant-time comparison on the signature.
func DecodeCookie(value string, secret []byte) (string, error) {
	token, sig, ok := strings.Cut(value, ".")
	if !ok || token == "" {
		return "", ErrInvalidCookie
	}
	expected := signToken(token, secret)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", ErrInvalidCookie
	}
	return token, nil
}
