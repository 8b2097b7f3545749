package router

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/alphagov/scene-router/geo"
	"github.com/alphagov/scene-router/logger"
	"github.com/alphagov/scene-router/scenes"
	"github.com/alphagov/scene-router/segment"
)

const (
	resultBypass   = "bypass"
	resultCutScene = "cut_scene"
	resultRegular  = "regular"
	resultError    = "error"
)

// Router classifies segment requests against the cut scene list and forwards
// every request, unchanged, to a single backend.
type Router struct {
	backend    http.Handler
	classifier *scenes.Classifier
	diagnostic *geo.Diagnostic
	Logger     zerolog.Logger
}

type Options struct {
	BackendID            string
	BackendURL           string
	BackendConnTimeout   time.Duration
	BackendHeaderTimeout time.Duration

	Dictionary        scenes.Dictionary
	DictionaryTimeout time.Duration

	// GeoLocator may be nil; cut scene diagnostics then log an unknown
	// location.
	GeoLocator       geo.Locator
	GeoLookupTimeout time.Duration
	ClientIPHeader   string

	Logger zerolog.Logger
}

// RegisterMetrics registers Prometheus metrics from the router module and the
// modules that it directly depends on. To use the default (global) registry,
// pass prometheus.DefaultRegisterer.
func RegisterMetrics(r prometheus.Registerer) {
	registerMetrics(r)
}

func NewRouter(o Options) (rt *Router, err error) {
	if o.Dictionary == nil {
		return nil, errors.New("no scene dictionary configured")
	}

	backend, err := newBackendHandler(o)
	if err != nil {
		return nil, err
	}
	o.Logger.Info().Str("backend_id", o.BackendID).Str("backend_url", o.BackendURL).Msg("forwarding all requests to backend")

	rt = &Router{
		backend:    backend,
		classifier: scenes.NewClassifier(o.Dictionary, o.DictionaryTimeout),
		diagnostic: geo.NewDiagnostic(geo.Options{
			Locator:        o.GeoLocator,
			ClientIPHeader: o.ClientIPHeader,
			LookupTimeout:  o.GeoLookupTimeout,
			Logger:         o.Logger,
		}),
		Logger: o.Logger,
	}
	return rt, nil
}

// ServeHTTP runs GET requests for segment files through cut scene
// classification, then forwards the original request to the backend.
func (rt *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	defer func() {
		if r := recover(); r != nil {
			if r == http.ErrAbortHandler {
				panic(r)
			}
			rt.Logger.Err(fmt.Errorf("%v", r)).Msgf("recovered from panic in ServeHTTP")
			logger.NotifySentry(logger.ReportableError{
				Error:   logger.RecoveredError{ErrorMessage: fmt.Sprint(r)},
				Request: req,
			})

			w.WriteHeader(http.StatusInternalServerError)

			internalServerErrorCountMetric.With(prometheus.Labels{"host": req.Host}).Inc()
		}
	}()

	if req.Method == http.MethodGet && segment.IsSegment(req.URL.Path) {
		if err := rt.checkSegment(req); err != nil {
			if errors.Is(err, segment.ErrOutOfRange) {
				rt.Logger.Warn().Err(err).Str("path", req.URL.Path).Msg("rejecting request for an impossible segment")
				http.Error(w, "400 Bad Request", http.StatusBadRequest)
				return
			}
			rt.classificationFailed(w, req, err)
			return
		}
	} else {
		segmentRequestCountMetric.With(prometheus.Labels{"result": resultBypass}).Inc()
	}

	rt.backend.ServeHTTP(w, req)
}

// checkSegment classifies the requested segment and logs where cut scene
// requests come from. Paths without a segment number count as segment 0.
func (rt *Router) checkSegment(req *http.Request) error {
	num, err := segment.Number(req.URL.Path)
	switch {
	case errors.Is(err, segment.ErrNoNumber):
		rt.Logger.Debug().Str("path", req.URL.Path).Msg("no segment number in path, using 0")
	case err != nil:
		segmentRequestCountMetric.With(prometheus.Labels{"result": resultError}).Inc()
		return err
	}

	cut, err := rt.classifier.IsCutScene(req.Context(), num)
	if err != nil {
		segmentRequestCountMetric.With(prometheus.Labels{"result": resultError}).Inc()
		return err
	}
	if !cut {
		segmentRequestCountMetric.With(prometheus.Labels{"result": resultRegular}).Inc()
		return nil
	}

	segmentRequestCountMetric.With(prometheus.Labels{"result": resultCutScene}).Inc()
	rt.Logger.Debug().Uint32("segment", num).Str("path", req.URL.Path).Msg("cut scene requested")
	rt.diagnostic.Log(req.Context(), req)
	return nil
}

func (rt *Router) classificationFailed(w http.ResponseWriter, req *http.Request, err error) {
	reason := failureReason(err)

	rt.Logger.Error().Err(err).
		Str("reason", reason).
		Str("path", req.URL.Path).
		Msg("failed to classify segment; scene list is misconfigured or unreachable")

	sceneListErrorCountMetric.With(prometheus.Labels{"reason": reason}).Inc()
	internalServerErrorCountMetric.With(prometheus.Labels{"host": req.Host}).Inc()

	http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
}

func failureReason(err error) string {
	var perr *scenes.ParseError
	switch {
	case errors.As(err, &perr):
		return "parse"
	case errors.Is(err, scenes.ErrSceneListMissing):
		return "missing"
	case errors.Is(err, scenes.ErrDictionaryUnavailable):
		return "unavailable"
	default:
		return "unknown"
	}
}
