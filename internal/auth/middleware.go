// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/logging"
)

// ErrAdminDisabled is returned when no admin credential is configured.
var ErrAdminDisabled = errors.New("admin endpoints are disabled: no credentials configured")

type subjectContextKey struct{}

// SubjectFromContext returns the subject stored by RequireAdmin.
func SubjectFromContext(ctx context.Context) (*Subject, bool) {
	s, ok := ctx.Value(subjectContextKey{}).(*Subject)
	return s, ok
}

// ContextWithSubject stores subject in ctx.
func ContextWithSubject(ctx context.Context, subject *Subject) context.Context {
	ctx = logging.ContextWithSubject(ctx, subject.ID)
	return context.WithValue(ctx, subjectContextKey{}, subject)
}

// ErrorWriter renders an authentication failure. The API layer supplies
// one that writes its JSON envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, err error)

func defaultErrorWriter(w http.ResponseWriter, _ *http.Request, status int, err error) {
	http.Error(w, err.Error(), status)
}

// Authorizer decides whether an authenticated caller may use a route.
// object is the request path and action the HTTP method.
type Authorizer interface {
	Authorize(subject string, roles []string, object, action string) (bool, error)
}

// Middleware guards admin endpoints.
type Middleware struct {
	authn   *MultiAuthenticator
	authz   Authorizer
	audit   *logging.AuditLogger
	onError ErrorWriter
}

// NewMiddleware builds the authenticator chain from cfg. With no
// credentials configured every admin request is refused.
func NewMiddleware(cfg *config.AuthConfig, audit *logging.AuditLogger, onError ErrorWriter) (*Middleware, error) {
	var authenticators []Authenticator

	if cfg.APIKey != "" || cfg.APIKeyHash != "" {
		a, err := NewAPIKeyAuthenticator(cfg.APIKey, cfg.APIKeyHash)
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, a)
	}
	if cfg.JWTSecret != "" {
		m, err := NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, NewJWTAuthenticator(m))
	}

	if onError == nil {
		onError = defaultErrorWriter
	}
	return &Middleware{
		authn:   NewMultiAuthenticator(authenticators...),
		audit:   audit,
		onError: onError,
	}, nil
}

// SetAuthorizer replaces the admin role check with route-level policy.
// Call it before serving.
func (m *Middleware) SetAuthorizer(a Authorizer) {
	m.authz = a
}

// Enabled reports whether any authenticator is configured.
func (m *Middleware) Enabled() bool {
	return m.authn.Len() > 0
}

// RequireAdmin rejects requests without an admin credential. action names
// the operation in audit records.
func (m *Middleware) RequireAdmin(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.Enabled() {
				m.reject(w, r, action, nil, http.StatusForbidden, ErrAdminDisabled)
				return
			}

			subject, err := m.authn.Authenticate(r.Context(), r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="campusrec"`)
				m.reject(w, r, action, nil, http.StatusUnauthorized, err)
				return
			}
			allowed, err := m.authorize(subject, r)
			if err != nil {
				m.reject(w, r, action, subject, http.StatusInternalServerError, err)
				return
			}
			if !allowed {
				m.reject(w, r, action, subject, http.StatusForbidden, ErrForbidden)
				return
			}

			AuthAttempts.WithLabelValues(string(subject.Method), "success").Inc()
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
		})
	}
}

func (m *Middleware) authorize(subject *Subject, r *http.Request) (bool, error) {
	if m.authz == nil {
		return subject.HasRole(RoleAdmin), nil
	}
	allowed, err := m.authz.Authorize(subject.ID, subject.Roles, r.URL.Path, r.Method)
	if err != nil {
		return false, fmt.Errorf("authorize: %w", err)
	}
	return allowed, nil
}

// Audit records the outcome of an admin action performed by the caller.
func (m *Middleware) Audit(r *http.Request, action string, actionErr error, details map[string]string) {
	event := &logging.AdminEvent{
		Action:     action,
		RemoteAddr: r.RemoteAddr,
		Success:    actionErr == nil,
		Details:    details,
	}
	if subject, ok := SubjectFromContext(r.Context()); ok {
		event.Subject = subject.ID
		event.Method = string(subject.Method)
	}
	if actionErr != nil {
		event.Error = actionErr.Error()
	}
	m.log(event)
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, action string, subject *Subject, status int, err error) {
	method := "none"
	event := &logging.AdminEvent{
		Action:     action,
		RemoteAddr: r.RemoteAddr,
		Error:      err.Error(),
	}
	if subject != nil {
		method = string(subject.Method)
		event.Subject = subject.ID
		event.Method = method
	} else if key := r.Header.Get(APIKeyHeader); key != "" {
		event.Subject = logging.MaskSecret(key)
	}
	AuthAttempts.WithLabelValues(method, outcomeFor(status)).Inc()
	m.log(event)

	m.onError(w, r, status, err)
}

func (m *Middleware) log(event *logging.AdminEvent) {
	if m.audit != nil {
		m.audit.Log(event)
	}
}

func outcomeFor(status int) string {
	switch status {
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusUnauthorized:
		return "unauthorized"
	default:
		return "error"
	}
}
