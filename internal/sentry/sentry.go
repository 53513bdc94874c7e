package sentryutil

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// Init configures the Sentry client. An empty DSN disables reporting; every
// capture helper below becomes a no-op in that case.
func Init(dsn, environment string, logger *zap.Logger) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			event.User = sentry.User{}
			return event
		},
	})
	if err != nil {
		logger.Warn("Sentry init failed (non-blocking)", zap.Error(err))
	}
	if dsn == "" {
		logger.Info("SENTRY_DSN empty, error tracking disabled")
	} else {
		logger.Info("Sentry initialized")
	}
}

// Flush drains buffered events; call during shutdown.
func Flush() { sentry.Flush(2 * time.Second) }

// CaptureError reports a handled error with optional tags.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Recover reports a recovered panic value.
func Recover(r interface{}) {
	if r == nil {
		return
	}
	sentry.CurrentHub().Recover(r)
}
