package report_test

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"gostop.app/internal/report"
)

func TestSetupSentry(t *testing.T) {
	t.Run("Valid DSN", func(t *testing.T) {
		if err := report.SetupSentry("https://public@sentry.example.com/1", "testing", "test"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		report.FlushSentry()
	})

	t.Run("Empty DSN disables client", func(t *testing.T) {
		if err := report.SetupSentry("", "testing", "test"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Invalid DSN", func(t *testing.T) {
		if err := report.SetupSentry("not a dsn", "testing", "test"); err == nil {
			t.Fatal("expected error for malformed DSN")
		}
	})
}

func TestReportErrorWithSentryOptionsNil(t *testing.T) {
	// Must not panic with a nil error.
	report.ReportErrorWithSentryOptions(nil, report.SentryReportOptions{})
	report.ReportError(nil)
	report.ReportError(errors.New("boom"), sentry.LevelWarning)
}
