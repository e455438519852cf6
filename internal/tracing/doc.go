// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

/*
Package tracing configures OpenTelemetry distributed tracing.

NewProvider installs a global tracer provider exporting over OTLP/HTTP and
the W3C trace-context propagator. When tracing is disabled the global no-op
provider stays in place, so StartSpan and StartDBSpan are always safe to
call.

Usage:

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	ctx, end := tracing.StartSpan(ctx, "recommend")
	defer end(err)
*/
package tracing
