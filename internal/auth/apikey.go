// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/campusrec/internal/logging"
)

// APIKeyHeader carries the admin API key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator accepts a static admin key, compared either in
// constant time against the plain key or with bcrypt against its hash.
type APIKeyAuthenticator struct {
	key  []byte
	hash []byte
}

// NewAPIKeyAuthenticator creates an authenticator for key or, when hash is
// set, for the bcrypt hash. The hash wins when both are set.
func NewAPIKeyAuthenticator(key, hash string) (*APIKeyAuthenticator, error) {
	if key == "" && hash == "" {
		return nil, errors.New("api key or api key hash is required")
	}
	a := &APIKeyAuthenticator{}
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, errors.New("api key hash is not a bcrypt hash")
		}
		a.hash = []byte(hash)
		return a, nil
	}
	a.key = []byte(key)
	return a, nil
}

// Authenticate validates the X-API-Key header.
func (a *APIKeyAuthenticator) Authenticate(_ context.Context, r *http.Request) (*Subject, error) {
	presented := r.Header.Get(APIKeyHeader)
	if presented == "" {
		return nil, ErrNoCredentials
	}

	var ok bool
	if a.hash != nil {
		ok = bcrypt.CompareHashAndPassword(a.hash, []byte(presented)) == nil
	} else {
		ok = subtle.ConstantTimeCompare(a.key, []byte(presented)) == 1
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return &Subject{
		ID:     logging.MaskSecret(presented),
		Method: MethodAPIKey,
		Roles:  []string{RoleAdmin},
	}, nil
}

// Name returns the authenticator name.
func (a *APIKeyAuthenticator) Name() string {
	return string(MethodAPIKey)
}

// Priority returns 10; API keys are checked before JWTs.
func (a *APIKeyAuthenticator) Priority() int {
	return 10
}
