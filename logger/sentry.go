package logger

import (
	"net/http"
	"time"

	sentry "github.com/getsentry/sentry-go"
)

type RecoveredError struct {
	ErrorMessage string
}

func (re RecoveredError) Error() string {
	return re.ErrorMessage
}

type ReportableError struct {
	Error   error
	Request *http.Request
}

func (re ReportableError) hint() *sentry.EventHint {
	return &sentry.EventHint{
		Request: re.Request,
	}
}

// NotifySentry reports re through the current hub with the request attached.
// It is a no-op when Sentry hasn't been initialised.
func NotifySentry(re ReportableError) {
	hub := sentry.CurrentHub().Clone()
	if hub.Client() == nil {
		return
	}

	hub.ConfigureScope(func(scope *sentry.Scope) {
		if re.Request != nil {
			scope.SetRequest(re.Request)
		}
	})
	hub.Client().CaptureException(re.Error, re.hint(), hub.Scope())
	hub.Flush(time.Second * 5)
}
