// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package session

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/quibble/quibble/pkg/errutil"
)

// cookieMaxAge is the session cookie MaxAge in seconds (10 years),
// matching the store TTL.
const cookieMaxAge = int(TTL / time.Second)

// Manager is the per-request session middleware. It resolves the
// incoming cookie to a Session before the handler runs and flushes any
// mutation back to the store afterwards.
type Manager struct {
	store  Store
	secret []byte
	secure bool
	logger *slog.Logger
}

// NewManager creates a Manager. secure controls the cookie Secure
// attribute and is set only in production deployments. A nil logger
// falls back to slog.Default.
func NewManager(store Store, secret []byte, secure bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, secret: secret, secure: secure, logger: logger}
}

// Handle wraps next with session load-before/save-after. The handler's
// response is buffered so the Set-Cookie header (and a failure status,
// if persisting the session fails) can still be issued after the
// handler has run.
func (m *Manager) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.resolve(r)
		ctx := NewContext(r.Context(), sess)

		bw := &bufferedWriter{ResponseWriter: w}
		next.ServeHTTP(bw, r.WithContext(ctx))

		if err := m.commit(r, w, sess); err != nil {
			// Cannot confirm the session persisted: the buffered handler
			// response is discarded and the request fails as a whole.
			errutil.LogError(m.logger, "session commit failed", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		bw.flush()
	})
}

// resolve turns the incoming cookie into a Session. A missing cookie
// costs no store round-trip; a bad signature, a load failure, and a
// store miss are all treated identically to anonymous.
func (m *Manager) resolve(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return New()
	}

	token, err := DecodeCookie(cookie.Value, m.secret)
	if err != nil {
		m.logger.Debug("rejected session cookie", "error", err)
		return New()
	}

	data, err := m.store.Load(r.Context(), token)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("session load failed, continuing anonymous", "error", err)
		}
		return New()
	}

	return Resume(token, data)
}

// commit persists the session if the handler created, mutated, or
// destroyed it, and manages the cookie accordingly.
func (m *Manager) commit(r *http.Request, w http.ResponseWriter, sess *Session) error {
	switch {
	case sess.Destroyed():
		if sess.Token() != "" {
			if err := m.store.Destroy(r.Context(), sess.Token()); err != nil {
				return oops.Code("SESSION_DESTROY_FAILED").Wrap(err)
			}
		}
		m.clearCookie(w)

	case sess.Dirty():
		// A disconnected client must not race a session write.
		if err := r.Context().Err(); err != nil {
			return oops.Code("SESSION_REQUEST_CANCELLED").Wrap(err)
		}

		token := sess.Token()
		fresh := token == ""
		if fresh {
			var err error
			if token, err = NewToken(); err != nil {
				return err
			}
		}

		if err := m.store.Save(r.Context(), token, sess.Snapshot()); err != nil {
			return oops.Code("SESSION_SAVE_FAILED").Wrap(err)
		}

		if fresh {
			m.setCookie(w, token)
		}
	}
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    EncodeCookie(token, m.secret),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

// bufferedWriter holds back the status code and body until the session
// outcome is known. Headers pass through to the underlying writer's map
// untouched; nothing reaches the wire until flush.
type bufferedWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (b *bufferedWriter) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) flush() {
	if b.status != 0 {
		b.ResponseWriter.WriteHeader(b.status)
	}
	if b.body.Len() > 0 {
		_, _ = b.ResponseWriter.Write(b.body.Bytes()) //nolint:errcheck // client write failures are not actionable here
	}
}
