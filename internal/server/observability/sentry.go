// Package observability configures structured logging and Sentry error reporting.
package observability

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// InitSentry initializes the global Sentry client. An empty DSN disables reporting.
func InitSentry(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
}

// FlushSentry waits for buffered events to be sent
func FlushSentry() {
	sentry.Flush(flushTimeout)
}

// CaptureError reports err to the hub bound to ctx, or to the current hub
func CaptureError(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}

// CapturePanic reports a recovered panic value with request details
func CapturePanic(ctx context.Context, recovered any, method, path string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("http.method", method)
		scope.SetTag("http.path", path)
		hub.RecoverWithContext(ctx, recovered)
	})
}
