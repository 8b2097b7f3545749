package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alphagov/scene-router/geo"
	router "github.com/alphagov/scene-router/lib"
	routerlog "github.com/alphagov/scene-router/logger"
)

//go:embed service.toml
var serviceManifest []byte

func usage() {
	helpstring := `
Scene Router %s
Usage: %s [-version]

Flags:
  -version          Print version and exit

The following environment variables and defaults are available:

ROUTER_PUBADDR=:8080               Address on which to serve public requests
ROUTER_APIADDR=:8081               Address on which to serve the admin API
ROUTER_ERROR_LOG=STDERR            File to log to (in JSON format)
ROUTER_DEBUG=                      Enable debug output if non-empty
BACKEND_URL=                       URL of the backend all requests are forwarded to (required)
BACKEND_NAME=segment-origin        Name of the backend in logs and metrics

Scene dictionary (the first one set is used):

ROUTER_DICTIONARY_FILE=            JSON file holding the cut_scenes dictionary
ROUTER_DICTIONARY_REDIS_ADDR=      Redis server holding the cut_scenes hash
DICTIONARY_DATABASE_URL=           PostgreSQL database holding the dictionary_items table

Client geolocation:

ROUTER_GEOIP_DATABASE=             MaxMind country database (.mmdb) for cut scene diagnostics
ROUTER_CLIENT_IP_HEADER=           Trusted request header carrying the client address

Timeouts: (values must be parseable by https://pkg.go.dev/time#ParseDuration)

ROUTER_BACKEND_CONNECT_TIMEOUT=1s  Connect timeout when connecting to the backend
ROUTER_BACKEND_HEADER_TIMEOUT=20s  Timeout for backend response headers to be returned
ROUTER_FRONTEND_READ_TIMEOUT=60s   See https://cs.opensource.google/go/go/+/master:src/net/http/server.go?q=symbol:ReadTimeout
ROUTER_FRONTEND_WRITE_TIMEOUT=60s  See https://cs.opensource.google/go/go/+/master:src/net/http/server.go?q=symbol:WriteTimeout
ROUTER_DICTIONARY_TIMEOUT=1s       Timeout for each scene list read
ROUTER_GEO_LOOKUP_TIMEOUT=50ms     Timeout for each client location lookup
`
	fmt.Fprintf(os.Stderr, helpstring, router.VersionInfo(), os.Args[0])
	const ErrUsage = 64
	os.Exit(ErrUsage)
}

func getenv(key string, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func getenvDuration(key string, defaultVal string) time.Duration {
	s := getenv(key, defaultVal)
	return mustParseDuration(s)
}

func mustParseDuration(s string) (d time.Duration) {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatal(err)
	}
	return
}

func listenAndServeOrFatal(addr string, handler http.Handler, rTimeout time.Duration, wTimeout time.Duration) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  rTimeout,
		WriteTimeout: wTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func main() {
	returnVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = usage
	flag.Parse()

	fmt.Fprintf(os.Stderr, "Scene Router %s\n", router.VersionInfo())
	if *returnVersion {
		os.Exit(0)
	}

	logger, err := routerlog.Init(routerlog.Options{
		Output: getenv("ROUTER_ERROR_LOG", "STDERR"),
		Debug:  os.Getenv("ROUTER_DEBUG") != "",
		Sentry: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer routerlog.Close()

	var (
		pubAddr           = getenv("ROUTER_PUBADDR", ":8080")
		apiAddr           = getenv("ROUTER_APIADDR", ":8081")
		backendURL        = os.Getenv("BACKEND_URL")
		backendName       = getenv("BACKEND_NAME", "segment-origin")
		geoipDatabase     = os.Getenv("ROUTER_GEOIP_DATABASE")
		clientIPHeader    = os.Getenv("ROUTER_CLIENT_IP_HEADER")
		beConnTimeout     = getenvDuration("ROUTER_BACKEND_CONNECT_TIMEOUT", "1s")
		beHeaderTimeout   = getenvDuration("ROUTER_BACKEND_HEADER_TIMEOUT", "20s")
		feReadTimeout     = getenvDuration("ROUTER_FRONTEND_READ_TIMEOUT", "60s")
		feWriteTimeout    = getenvDuration("ROUTER_FRONTEND_WRITE_TIMEOUT", "60s")
		dictionaryTimeout = getenvDuration("ROUTER_DICTIONARY_TIMEOUT", "1s")
		geoLookupTimeout  = getenvDuration("ROUTER_GEO_LOOKUP_TIMEOUT", "50ms")
	)

	if version, err := router.DeployedVersion(serviceManifest); err != nil {
		logger.Warn().Err(err).Msg("couldn't read deployed version from service manifest")
	} else {
		logger.Debug().Int("version", version).Msg("scene router starting")
	}

	logger.Info().Msgf("frontend read timeout: %v", feReadTimeout)
	logger.Info().Msgf("frontend write timeout: %v", feWriteTimeout)
	logger.Info().Msgf("GOMAXPROCS value of %d", runtime.GOMAXPROCS(0))

	router.RegisterMetrics(prometheus.DefaultRegisterer)

	dict, closeDict, err := router.OpenDictionary(context.Background(), router.DictionarySource{
		File:        os.Getenv("ROUTER_DICTIONARY_FILE"),
		RedisAddr:   os.Getenv("ROUTER_DICTIONARY_REDIS_ADDR"),
		DatabaseURL: os.Getenv("DICTIONARY_DATABASE_URL"),
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open scene dictionary")
	}
	defer closeDict()

	var locator geo.Locator
	if geoipDatabase != "" {
		mm, err := geo.OpenMaxMind(geoipDatabase)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open geoip database")
		}
		defer mm.Close()
		locator = mm
	} else {
		logger.Warn().Msg("no geoip database configured; cut scene diagnostics will log an unknown location")
	}

	rout, err := router.NewRouter(router.Options{
		BackendID:            backendName,
		BackendURL:           backendURL,
		BackendConnTimeout:   beConnTimeout,
		BackendHeaderTimeout: beHeaderTimeout,
		Dictionary:           dict,
		DictionaryTimeout:    dictionaryTimeout,
		GeoLocator:           locator,
		GeoLookupTimeout:     geoLookupTimeout,
		ClientIPHeader:       clientIPHeader,
		Logger:               logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create router")
	}

	go listenAndServeOrFatal(pubAddr, rout, feReadTimeout, feWriteTimeout)
	logger.Info().Msgf("listening for requests on %v", pubAddr)

	api, err := router.NewAPIHandler(rout)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create API handler")
	}

	logger.Info().Msgf("listening for API requests on %v", apiAddr)
	listenAndServeOrFatal(apiAddr, api, feReadTimeout, feWriteTimeout)
}
