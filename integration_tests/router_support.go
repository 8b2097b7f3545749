package integration

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	// revive:disable:dot-imports
	. "github.com/onsi/gomega"
	// revive:enable:dot-imports

	"github.com/alphagov/scene-router/dictionary"
	"github.com/alphagov/scene-router/geo"
	router "github.com/alphagov/scene-router/lib"
	"github.com/alphagov/scene-router/scenes"
)

var dictionaryDir string

func setupDictionaryFile() error {
	dir, err := os.MkdirTemp("", "scene_router_dictionary")
	if err != nil {
		return err
	}
	dictionaryDir = dir
	return nil
}

func cleanupDictionaryFile() {
	if dictionaryDir != "" {
		os.RemoveAll(dictionaryDir)
	}
}

func dictionaryPath() string {
	return filepath.Join(dictionaryDir, "dictionaries.json")
}

// setSceneList writes the cut scene list read by routers started with
// startRouter. Routers re-read it on every request.
func setSceneList(list string) {
	content := `{"cut_scenes": {"scenes": "` + list + `"}}`
	Expect(os.WriteFile(dictionaryPath(), []byte(content), 0600)).To(Succeed())
}

func clearSceneList() {
	Expect(os.WriteFile(dictionaryPath(), []byte(`{"cut_scenes": {}}`), 0600)).To(Succeed())
}

type routerConfig struct {
	dictionary    scenes.Dictionary
	locator       geo.Locator
	headerTimeout time.Duration
}

type runningRouter struct {
	public *httptest.Server
	api    *httptest.Server
}

func (r *runningRouter) URL(path string) string {
	return r.public.URL + path
}

func (r *runningRouter) APIURL(path string) string {
	return r.api.URL + path
}

func (r *runningRouter) Close() {
	r.public.Close()
	r.api.Close()
}

func startRouter(backendURL string, cfg routerConfig) *runningRouter {
	if cfg.dictionary == nil {
		cfg.dictionary = dictionary.NewFile(dictionaryPath(), scenes.DictionaryName)
	}
	if cfg.headerTimeout == 0 {
		cfg.headerTimeout = 20 * time.Second
	}

	logger := zerolog.New(tempLogfile).Level(zerolog.DebugLevel).With().Timestamp().Logger()

	rout, err := router.NewRouter(router.Options{
		BackendID:            "segment-origin",
		BackendURL:           backendURL,
		BackendConnTimeout:   time.Second,
		BackendHeaderTimeout: cfg.headerTimeout,
		Dictionary:           cfg.dictionary,
		DictionaryTimeout:    time.Second,
		GeoLocator:           cfg.locator,
		GeoLookupTimeout:     50 * time.Millisecond,
		ClientIPHeader:       "Fastly-Client-IP",
		Logger:               logger,
	})
	Expect(err).NotTo(HaveOccurred())

	api, err := router.NewAPIHandler(rout)
	Expect(err).NotTo(HaveOccurred())

	return &runningRouter{
		public: httptest.NewServer(rout),
		api:    httptest.NewServer(api),
	}
}
