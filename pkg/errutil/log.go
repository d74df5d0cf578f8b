// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

// Package errutil logs errors with the structured context oops attaches
// to them.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error at Error level. For oops errors the code and
// attached context are included as attributes; plain errors log as-is.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, Attrs(err)...)
}

// Attrs extracts loggable attributes from an error.
func Attrs(err error) []any {
	attrs := []any{"error", err.Error()}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return attrs
	}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}
