// Package logger sets up the process-wide zerolog logger. Error and fatal
// events are also sent to Sentry.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
)

type Options struct {
	// Output is "STDERR", "STDOUT" or the path of a file to append to.
	Output string
	Debug  bool
	// Sentry adds a writer forwarding error and fatal events to Sentry.
	// SENTRY_DSN, SENTRY_ENVIRONMENT and SENTRY_RELEASE are read from the
	// environment.
	Sentry bool
}

var (
	initOnce sync.Once
	root     zerolog.Logger
	closers  []io.Closer
	initErr  error
)

// Init builds the process logger from o the first time it is called. Later
// calls return the same logger and ignore their options.
func Init(o Options) (zerolog.Logger, error) {
	initOnce.Do(func() {
		root, initErr = build(o)
	})
	return root, initErr
}

// Close flushes and releases anything opened by Init.
func Close() {
	for _, c := range closers {
		_ = c.Close()
	}
	closers = nil
}

func build(o Options) (zerolog.Logger, error) {
	out, err := openWriter(o.Output)
	if err != nil {
		return zerolog.Nop(), err
	}

	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}

	if !o.Sentry {
		return New(out, level), nil
	}

	if err := sentry.Init(sentry.ClientOptions{}); err != nil {
		return zerolog.Nop(), fmt.Errorf("sentry initialization failed: %w", err)
	}

	writer, err := sentryzerolog.New(sentryzerolog.Config{
		ClientOptions: sentry.ClientOptions{},
		Options: sentryzerolog.Options{
			Levels:          []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel},
			FlushTimeout:    3 * time.Second,
			WithBreadcrumbs: true,
		},
	})
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("sentry writer initialization failed: %w", err)
	}
	closers = append(closers, writer)

	return New(zerolog.MultiLevelWriter(out, writer), level), nil
}

// New returns a timestamped logger writing to w at the given minimum level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func openWriter(output string) (io.Writer, error) {
	switch output {
	case "", "STDERR":
		return os.Stderr, nil
	case "STDOUT":
		return os.Stdout, nil
	}

	f, err := os.OpenFile(output, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600) //nolint:gosec // path is from ROUTER_ERROR_LOG
	if err != nil {
		return nil, err
	}
	closers = append(closers, f)
	return f, nil
}
