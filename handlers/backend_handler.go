package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var forwardedHeaders = []string{"Forwarded", "X-Forwarded-For", "X-Forwarded-Host", "X-Forwarded-Proto"}

// NewBackendHandler returns a handler which forwards requests to backendURL
// and copies the response back verbatim. The backend sees the request as if
// the client had sent it directly.
func NewBackendHandler(
	backendID string,
	backendURL *url.URL,
	connectTimeout, headerTimeout time.Duration,
	logger zerolog.Logger,
) http.Handler {
	proxy := &httputil.ReverseProxy{
		Transport: newBackendTransport(backendID, connectTimeout, headerTimeout, logger),
		ErrorLog:  log.New(logger, "", 0),
	}

	proxy.Rewrite = func(pr *httputil.ProxyRequest) {
		// SetURL also points the Host header at the backend.
		pr.SetURL(backendURL)

		// The outbound query has had unparseable parameters removed.
		pr.Out.URL.RawQuery = pr.In.URL.RawQuery

		// Rewrite drops Forwarded and X-Forwarded-* from the outbound
		// request; put back whatever the client sent and add nothing of our
		// own.
		for _, h := range forwardedHeaders {
			if v, ok := pr.In.Header[h]; ok {
				pr.Out.Header[h] = v
			}
		}

		// Setting a blank User-Agent causes the http lib not to output one, whereas if there
		// is no header, it will output a default one.
		if _, present := pr.Out.Header["User-Agent"]; !present {
			pr.Out.Header.Set("User-Agent", "")
		}
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		event := logger.Error()
		if errors.Is(err, context.Canceled) {
			event = logger.Debug()
		}
		event.Err(err).
			Str("backend_id", backendID).
			Str("request_method", req.Method).
			Str("upstream_addr", backendURL.Host).
			Int("status", http.StatusBadGateway).
			Msg("backend request failed")

		w.WriteHeader(http.StatusBadGateway)
	}

	return proxy
}

type backendTransport struct {
	backendID string
	wrapped   *http.Transport
	logger    zerolog.Logger
}

// Construct a backendTransport that wraps an http.Transport and implements http.RoundTripper.
// This allows us to intercept the response from the backend and modify it before it's copied
// back to the client.
func newBackendTransport(
	backendID string,
	connectTimeout, headerTimeout time.Duration,
	logger zerolog.Logger,
) *backendTransport {
	transport := http.Transport{}

	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	// Allow the proxy to keep more than the default (2) keepalive connections
	// per upstream.
	transport.MaxIdleConnsPerHost = 20
	transport.ResponseHeaderTimeout = headerTimeout
	transport.Proxy = http.ProxyFromEnvironment

	return &backendTransport{backendID, &transport, logger}
}

func (bt *backendTransport) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	var responseCode int
	var startTime = time.Now()

	BackendHandlerRequestCountMetric.With(prometheus.Labels{
		"backend_id":     bt.backendID,
		"request_method": req.Method,
	}).Inc()

	defer func() {
		durationSeconds := time.Since(startTime).Seconds()

		BackendHandlerResponseDurationSecondsMetric.With(prometheus.Labels{
			"backend_id":     bt.backendID,
			"request_method": req.Method,
			"response_code":  strconv.Itoa(responseCode),
		}).Observe(durationSeconds)
	}()

	resp, err = bt.wrapped.RoundTrip(req)
	if err == nil {
		responseCode = resp.StatusCode
		return resp, nil
	}

	// Intercept timeout errors and generate an HTTP error response
	var timeoutErr interface{ Timeout() bool }
	switch {
	case errors.As(err, &timeoutErr) && timeoutErr.Timeout():
		responseCode = http.StatusGatewayTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		responseCode = http.StatusBadGateway
	}

	// Anything else is logged by the proxy's ErrorHandler.
	if responseCode == 0 {
		return nil, err
	}

	bt.logger.Error().Err(err).
		Str("backend_id", bt.backendID).
		Str("request_method", req.Method).
		Str("upstream_addr", req.URL.Host).
		Int("status", responseCode).
		Msg("backend request failed")

	return newErrorResponse(responseCode), nil
}

func newErrorResponse(status int) (resp *http.Response) {
	resp = &http.Response{StatusCode: status, Header: http.Header{}}
	resp.Body = io.NopCloser(strings.NewReader(""))
	return
}
