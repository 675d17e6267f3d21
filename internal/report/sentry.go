package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SetupSentry initialises the global Sentry hub. An empty DSN leaves the
// client disabled so events are dropped locally.
func SetupSentry(dsn, env, release string) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		EnableTracing:    true,
		Debug:            env == "development",
		TracesSampleRate: 1.0,
	}); err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	sentry.CaptureMessage("GoStop started")
	return nil
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
