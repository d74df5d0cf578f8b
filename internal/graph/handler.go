// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package graph

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("quibble/graph")

// request is the standard GraphQL-over-HTTP POST body.
type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler serves GraphQL requests over HTTP POST.
type Handler struct {
	schema graphql.Schema
	logger *slog.Logger
}

// NewHandler creates a Handler. A nil logger falls back to slog.Default.
func NewHandler(schema graphql.Schema, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{schema: schema, logger: logger}
}

// ServeHTTP executes one GraphQL request. The response is always a JSON
// document with data and/or errors; transport-level failures (wrong
// method, unparseable body) map to HTTP status codes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorDocument("method not allowed"))
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDocument("malformed request body"))
		return
	}

	ctx, span := tracer.Start(r.Context(), "graphql.execute")
	defer span.End()
	if req.OperationName != "" {
		span.SetAttributes(attribute.String("graphql.operation_name", req.OperationName))
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	span.SetAttributes(attribute.Int("graphql.error_count", len(result.Errors)))

	writeJSON(w, http.StatusOK, result)
}

func errorDocument(message string) map[string]any {
	return map[string]any{
		"errors": []map[string]any{{"message": message}},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // client write failures are not actionable here
}
