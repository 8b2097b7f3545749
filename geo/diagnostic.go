package geo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	countryUS      = "US"
	countryUnknown = "unknown"
)

var errNoLocator = errors.New("no geo locator configured")

type Options struct {
	// Locator may be nil, in which case every lookup is unknown.
	Locator        Locator
	ClientIPHeader string
	LookupTimeout  time.Duration
	Logger         zerolog.Logger
}

// Diagnostic logs where cut scene requests come from. It has no effect on how
// a request is handled and never fails.
type Diagnostic struct {
	opts Options
}

func NewDiagnostic(o Options) *Diagnostic {
	return &Diagnostic{opts: o}
}

// Log looks up the country of the client that sent req and writes a debug
// line. Lookup problems are logged as an unknown location.
func (d *Diagnostic) Log(ctx context.Context, req *http.Request) {
	country, err := d.lookup(ctx, req)
	if err != nil {
		d.opts.Logger.Debug().Err(err).Str("country", countryUnknown).Msg("client location unknown")
		diagnosticCountMetric.With(prometheus.Labels{"country": countryUnknown}).Inc()
		return
	}

	if country == countryUS {
		d.opts.Logger.Debug().Str("country", country).Msg("client is in the USA")
		diagnosticCountMetric.With(prometheus.Labels{"country": "us"}).Inc()
		return
	}
	d.opts.Logger.Debug().Str("country", country).Msgf("client is in %s", country)
	diagnosticCountMetric.With(prometheus.Labels{"country": "other"}).Inc()
}

func (d *Diagnostic) lookup(ctx context.Context, req *http.Request) (string, error) {
	if d.opts.Locator == nil {
		return "", errNoLocator
	}

	ip := ClientIP(req, d.opts.ClientIPHeader)
	if ip == nil {
		return "", errors.New("client address unavailable")
	}

	if d.opts.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.LookupTimeout)
		defer cancel()
	}
	country, err := d.opts.Locator.CountryCode(ctx, ip)
	if err == nil && country == "" {
		err = ErrNoCountry
	}
	return country, err
}
