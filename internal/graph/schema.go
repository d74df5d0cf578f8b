// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

// Package graph exposes the auth operations over GraphQL: a me query
// and register/login/logout mutations. Resolvers pull the per-request
// session handle from the context placed there by the session manager.
package graph

import (
	"errors"
	"log/slog"

	"github.com/graphql-go/graphql"
	"github.com/samber/oops"

	"github.com/quibble/quibble/internal/auth"
	"github.com/quibble/quibble/internal/observability"
	"github.com/quibble/quibble/internal/session"
	"github.com/quibble/quibble/pkg/errutil"
)

// errInternal is the only error text unexpected failures surface to
// clients; details stay in the logs.
var errInternal = errors.New("internal server error")

// userPayload and fieldErrorPayload shape resolver output for the
// default field resolver.
type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type fieldErrorPayload struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// userResponse carries either a user or a non-empty error list, never
// both.
type userResponse struct {
	Errors []fieldErrorPayload `json:"errors"`
	User   *userPayload        `json:"user"`
}

func toUserPayload(user *auth.User) *userPayload {
	if user == nil {
		return nil
	}
	return &userPayload{ID: user.ID, Username: user.Username}
}

func toUserResponse(res *auth.Result) *userResponse {
	out := &userResponse{User: toUserPayload(res.User)}
	for _, fe := range res.Errors {
		out.Errors = append(out.Errors, fieldErrorPayload{Field: fe.Field, Message: fe.Message})
	}
	return out
}

// Resolver binds the schema to the auth service.
type Resolver struct {
	svc     *auth.Service
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewResolver creates a Resolver. metrics may be nil; a nil logger falls
// back to slog.Default.
func NewResolver(svc *auth.Service, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{svc: svc, metrics: metrics, logger: logger}
}

// sessionFromParams extracts the session handle the manager placed in
// the request context. Its absence is a wiring bug, not a user error.
func sessionFromParams(p graphql.ResolveParams) (*session.Session, error) {
	sess, ok := session.FromContext(p.Context)
	if !ok {
		return nil, oops.Code("GRAPH_NO_SESSION").Errorf("no session in request context")
	}
	return sess, nil
}

func credentialsFromParams(p graphql.ResolveParams) auth.Credentials {
	options, _ := p.Args["options"].(map[string]any)
	username, _ := options["username"].(string)
	password, _ := options["password"].(string)
	return auth.Credentials{Username: username, Password: password}
}

// fail logs the unexpected failure and converts it to the generic
// client-facing error.
func (r *Resolver) fail(operation string, err error) error {
	r.record(operation, "error")
	errutil.LogError(r.logger, operation+" failed", err)
	return errInternal
}

func (r *Resolver) record(operation, result string) {
	if r.metrics != nil {
		r.metrics.AuthOperations.WithLabelValues(operation, result).Inc()
	}
}

func (r *Resolver) resolveMe(p graphql.ResolveParams) (any, error) {
	sess, err := sessionFromParams(p)
	if err != nil {
		return nil, r.fail("me", err)
	}
	user, err := r.svc.Me(p.Context, sess)
	if err != nil {
		return nil, r.fail("me", err)
	}
	r.record("me", "ok")
	if user == nil {
		return nil, nil
	}
	return toUserPayload(user), nil
}

func (r *Resolver) resolveRegister(p graphql.ResolveParams) (any, error) {
	sess, err := sessionFromParams(p)
	if err != nil {
		return nil, r.fail("register", err)
	}
	res, err := r.svc.Register(p.Context, credentialsFromParams(p), sess)
	if err != nil {
		return nil, r.fail("register", err)
	}
	if len(res.Errors) > 0 {
		r.record("register", "rejected")
	} else {
		r.record("register", "ok")
	}
	return toUserResponse(res), nil
}

func (r *Resolver) resolveLogin(p graphql.ResolveParams) (any, error) {
	sess, err := sessionFromParams(p)
	if err != nil {
		return nil, r.fail("login", err)
	}
	res, err := r.svc.Login(p.Context, credentialsFromParams(p), sess)
	if err != nil {
		return nil, r.fail("login", err)
	}
	if len(res.Errors) > 0 {
		r.record("login", "rejected")
	} else {
		r.record("login", "ok")
	}
	return toUserResponse(res), nil
}

func (r *Resolver) resolveLogout(p graphql.ResolveParams) (any, error) {
	sess, err := sessionFromParams(p)
	if err != nil {
		return nil, r.fail("logout", err)
	}
	ok := r.svc.Logout(p.Context, sess)
	r.record("logout", "ok")
	return ok, nil
}

// NewSchema builds the executable schema around a Resolver.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	fieldErrorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FieldError",
		Fields: graphql.Fields{
			"field":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	userResponseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UserResponse",
		Fields: graphql.Fields{
			"errors": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(fieldErrorType))},
			"user":   &graphql.Field{Type: userType},
		},
	})

	credentialsInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UsernamePasswordInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	optionsArg := graphql.FieldConfigArgument{
		"options": &graphql.ArgumentConfig{Type: graphql.NewNonNull(credentialsInput)},
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.resolveMe,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type:    graphql.NewNonNull(userResponseType),
				Args:    optionsArg,
				Resolve: r.resolveRegister,
			},
			"login": &graphql.Field{
				Type:    graphql.NewNonNull(userResponseType),
				Args:    optionsArg,
				Resolve: r.resolveLogin,
			},
			"logout": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Resolve: r.resolveLogout,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
	if err != nil {
		return graphql.Schema{}, oops.Code("GRAPH_SCHEMA_FAILED").Wrap(err)
	}
	return schema, nil
}
