// Package sentry reports unexpected compute-risk failures.
//
// Reporting is off unless a DSN is configured, and DO_NOT_TRACK=1 or
// COMPUTE_RISK_NO_TELEMETRY=1 turns it off regardless. Tracker artifacts
// are not ours to ship: events carry only the first line of an error
// message, with home directories and email addresses masked, and
// breadcrumb data is limited to counts and scrubbed strings.
package sentry

import (
	"context"
	"errors"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/handleui/compute-risk/internal/risk"
	"github.com/handleui/compute-risk/internal/tracker"
)

// Environment variables read by Init.
const (
	DSNEnv         = "SENTRY_DSN"
	EnvironmentEnv = "SENTRY_ENVIRONMENT"
	NoTelemetryEnv = "COMPUTE_RISK_NO_TELEMETRY"
	doNotTrackEnv  = "DO_NOT_TRACK" // https://consoledonottrack.com/
)

const (
	flushTimeout   = 2 * time.Second
	sendTimeout    = 3 * time.Second
	maxBreadcrumbs = 8
)

// DSN is set at release time:
//
//	go build -ldflags "-X github.com/handleui/compute-risk/internal/sentry.DSN=https://..."
var DSN string

var (
	homeDirPattern = regexp.MustCompile(`(?i)(/home/|/Users/|C:\\Users\\)([^/\\:\s]+)`)
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

func disabled() bool {
	return os.Getenv(doNotTrackEnv) == "1" || os.Getenv(NoTelemetryEnv) == "1"
}

func dsn() string {
	if v := os.Getenv(DSNEnv); v != "" {
		return v
	}
	return DSN
}

// Init starts the client and returns a function that flushes pending
// events. Both are no-ops when reporting is off.
func Init(version string) func() {
	if disabled() || dsn() == "" {
		return func() {}
	}

	environment := os.Getenv(EnvironmentEnv)
	if environment == "" {
		environment = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn(),
		Release:     "compute-risk@" + version,
		Environment: environment,
		// The hostname of a tracker server is not useful and may be internal.
		ServerName:       runtime.GOOS + "/" + runtime.GOARCH,
		AttachStacktrace: true,
		MaxBreadcrumbs:   maxBreadcrumbs,
		HTTPClient:       &http.Client{Timeout: sendTimeout},
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			scrubEvent(event)
			return event
		},
		BeforeBreadcrumb: func(b *sentry.Breadcrumb, _ *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			scrubBreadcrumb(b)
			return b
		},
	})
	if err != nil {
		return func() {}
	}
	return func() { sentry.Flush(flushTimeout) }
}

// CaptureError reports err, grouped by its failure class.
func CaptureError(err error) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub()
	hub.WithScope(func(scope *sentry.Scope) {
		if fp := fingerprint(err); fp != nil {
			scope.SetFingerprint(fp)
		}
		hub.CaptureException(err)
	})
}

// RecoverAndPanic reports a panic and re-raises it. Defer it before the
// cleanup returned by Init so the event is flushed first.
func RecoverAndPanic() {
	if r := recover(); r != nil {
		sentry.CurrentHub().RecoverWithContext(context.Background(), r)
		sentry.Flush(flushTimeout)
		panic(r)
	}
}

// AddBreadcrumb records a pipeline step. Only counts and short identifiers
// belong in data; string values are scrubbed.
func AddBreadcrumb(category, message string, data map[string]any) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Data:      data,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	})
}

// SetTag sets a scrubbed tag on the current scope.
func SetTag(key, value string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag(key, scrub(value))
	})
}

// fingerprint groups failures whose messages vary with the input:
// parse errors embed offsets and characters from the artifact.
func fingerprint(err error) []string {
	var pe *tracker.ParseError
	if errors.As(err, &pe) {
		return []string{"parse-error"}
	}
	var re *risk.Error
	if errors.As(err, &re) {
		if re.Phase == "" {
			return []string{"risk", re.Kind.Error()}
		}
		return []string{"risk", re.Kind.Error(), re.Phase}
	}
	return nil
}

// scrub keeps the first line of s and masks home directories and email
// addresses. YAML errors append an excerpt of the config file and JSON
// errors may quote artifact text, so only the headline is kept.
func scrub(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = homeDirPattern.ReplaceAllString(s, "${1}[user]")
	return emailPattern.ReplaceAllString(s, "[email]")
}

func scrubBreadcrumb(b *sentry.Breadcrumb) {
	b.Message = scrub(b.Message)
	for k, v := range b.Data {
		if s, ok := v.(string); ok {
			b.Data[k] = scrub(s)
		}
	}
}

func scrubEvent(event *sentry.Event) {
	event.Message = scrub(event.Message)
	for i := range event.Exception {
		ex := &event.Exception[i]
		ex.Value = scrub(ex.Value)
		if ex.Stacktrace == nil {
			continue
		}
		for j := range ex.Stacktrace.Frames {
			ex.Stacktrace.Frames[j].AbsPath = scrub(ex.Stacktrace.Frames[j].AbsPath)
		}
	}
	for _, b := range event.Breadcrumbs {
		scrubBreadcrumb(b)
	}
	for k, v := range event.Tags {
		event.Tags[k] = scrub(v)
	}
	// Nothing in this program sets extra context.
	event.Extra = nil
}
