// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sort"
)

// Method names the credential kind that authenticated a subject.
type Method string

const (
	// MethodAPIKey authenticates with the X-API-Key header.
	MethodAPIKey Method = "api_key"

	// MethodJWT authenticates with an HS256 Bearer token.
	MethodJWT Method = "jwt"
)

// RoleAdmin is the only role that may change recommender configuration.
const RoleAdmin = "admin"

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")

	// ErrForbidden indicates valid credentials without the admin role.
	ErrForbidden = errors.New("admin role required")
)

// Subject is an authenticated caller.
type Subject struct {
	// ID is the JWT subject, or a masked API key.
	ID     string
	Method Method
	Roles  []string
}

// HasRole reports whether the subject carries role.
func (s *Subject) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}

// Authenticator extracts and verifies one kind of credential.
type Authenticator interface {
	// Authenticate returns ErrNoCredentials when the request carries no
	// credential of this kind.
	Authenticate(ctx context.Context, r *http.Request) (*Subject, error)

	Name() string

	// Priority orders authenticators; lower runs first.
	Priority() int
}

// MultiAuthenticator tries authenticators in priority order. A missing
// credential falls through to the next one; an invalid credential stops the
// chain.
type MultiAuthenticator struct {
	authenticators []Authenticator
}

// NewMultiAuthenticator sorts authenticators by priority.
func NewMultiAuthenticator(authenticators ...Authenticator) *MultiAuthenticator {
	m := &MultiAuthenticator{authenticators: append([]Authenticator(nil), authenticators...)}
	sort.SliceStable(m.authenticators, func(i, j int) bool {
		return m.authenticators[i].Priority() < m.authenticators[j].Priority()
	})
	return m
}

// Len returns the number of configured authenticators.
func (m *MultiAuthenticator) Len() int {
	return len(m.authenticators)
}

// Authenticate tries each authenticator in order.
func (m *MultiAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*Subject, error) {
	for _, a := range m.authenticators {
		subject, err := a.Authenticate(ctx, r)
		if err == nil {
			return subject, nil
		}
		if !errors.Is(err, ErrNoCredentials) {
			return nil, err
		}
	}
	return nil, ErrNoCredentials
}
