package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alphagov/scene-router/handlers"
)

func newBackendHandler(o Options) (http.Handler, error) {
	if o.BackendURL == "" {
		return nil, errors.New("router: no URL configured for backend " + o.BackendID)
	}

	backend, err := url.Parse(o.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("router: couldn't parse URL %s for backend %s: %w", o.BackendURL, o.BackendID, err)
	}
	if backend.Scheme == "" || backend.Host == "" {
		return nil, fmt.Errorf("router: URL %s for backend %s is not absolute", o.BackendURL, o.BackendID)
	}

	return handlers.NewBackendHandler(
		o.BackendID,
		backend,
		o.BackendConnTimeout,
		o.BackendHeaderTimeout,
		o.Logger,
	), nil
}
