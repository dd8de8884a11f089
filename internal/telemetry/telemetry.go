// Package telemetry provides opt-in error tracking via Sentry.
package telemetry

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/errors"
	"github.com/hazyhour/blazebot/internal/logging"
)

// flushTimeout bounds how long shutdown waits for pending events.
const flushTimeout = 2 * time.Second

// Init initializes the Sentry SDK and installs the error reporter. Telemetry
// is strictly opt-in: with Sentry disabled this is a no-op and built errors
// stay local.
func Init(settings *conf.Settings) error {
	if !settings.Sentry.Enabled {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		SampleRate:       1.0,
		AttachStacktrace: true,
		Release:          settings.Main.Name,
	})
	if err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetReporter(&sentryReporter{log: reporterLogger()})
	return nil
}

// Flush drains pending events. Called on shutdown.
func Flush() {
	sentry.Flush(flushTimeout)
}

func reporterLogger() *slog.Logger {
	if log := logging.ForService("telemetry"); log != nil {
		return log
	}
	return slog.Default().With("service", "telemetry")
}

// sentryReporter forwards built errors to Sentry with their component and
// category as tags and the error context as extra data.
type sentryReporter struct {
	log *slog.Logger
}

func (r *sentryReporter) ReportError(ee *errors.EnhancedError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", string(ee.Category))
		for key, value := range ee.GetContext() {
			scope.SetExtra(key, value)
		}
		sentry.CaptureException(ee)
	})
	r.log.Debug("reported error to telemetry",
		"component", ee.Component, "category", ee.Category)
}
