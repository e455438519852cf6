// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	subjectKey
)

// GenerateRequestID returns a random UUID for X-Request-ID.
func GenerateRequestID() string {
	return uuid.NewString()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithSubject records the authenticated admin caller.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}

// ContextWithLogger attaches logger using zerolog's own context slot.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// LoggerFromContext falls back to the global logger when ctx has none.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return Logger()
}

// Ctx is the logger handlers should use: the context logger tagged with the
// request ID and subject when present.
//
//	logging.Ctx(ctx).Info().Int("user_id", id).Msg("recommendation served")
func Ctx(ctx context.Context) *zerolog.Logger {
	lc := LoggerFromContext(ctx).With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if s := SubjectFromContext(ctx); s != "" {
		lc = lc.Str("subject", s)
	}
	l := lc.Logger()
	return &l
}

// WithComponent tags a child of the global logger, e.g. "catalog".
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
