package geo

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

type fakeLocator struct {
	country  string
	err      error
	delay    time.Duration
	lookedUp net.IP
}

func (l *fakeLocator) CountryCode(ctx context.Context, ip net.IP) (string, error) {
	l.lookedUp = ip
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return l.country, l.err
}

var _ = Describe("Diagnostic", func() {
	var (
		logs    *bytes.Buffer
		locator *fakeLocator
	)

	diagnose := func(o Options) {
		o.Logger = zerolog.New(logs).Level(zerolog.DebugLevel)
		req := httptest.NewRequest("GET", "/videos/show_5.ts", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		NewDiagnostic(o).Log(context.Background(), req)
	}

	count := func(label string) float64 {
		return promtest.ToFloat64(diagnosticCountMetric.With(prometheus.Labels{"country": label}))
	}

	BeforeEach(func() {
		logs = &bytes.Buffer{}
		locator = &fakeLocator{}
	})

	It("logs clients in the USA", func() {
		locator.country = "US"
		before := count("us")

		diagnose(Options{Locator: locator})

		Expect(logs.String()).To(ContainSubstring(`"message":"client is in the USA"`))
		Expect(logs.String()).To(ContainSubstring(`"level":"debug"`))
		Expect(count("us") - before).To(BeNumerically("~", 1.0))
	})

	It("logs the country code of other clients", func() {
		locator.country = "GB"
		before := count("other")

		diagnose(Options{Locator: locator})

		Expect(logs.String()).To(ContainSubstring(`"country":"GB"`))
		Expect(logs.String()).To(ContainSubstring("client is in GB"))
		Expect(count("other") - before).To(BeNumerically("~", 1.0))
	})

	It("looks up the client address of the request", func() {
		locator.country = "US"
		diagnose(Options{Locator: locator})
		Expect(locator.lookedUp.String()).To(Equal("203.0.113.9"))
	})

	DescribeTable("logs unknown instead of failing",
		func(setup func() Options) {
			before := count("unknown")

			Expect(func() { diagnose(setup()) }).NotTo(Panic())

			Expect(logs.String()).To(ContainSubstring(`"country":"unknown"`))
			Expect(count("unknown") - before).To(BeNumerically("~", 1.0))
		},
		Entry("without a locator", func() Options {
			return Options{}
		}),
		Entry("when the lookup fails", func() Options {
			locator.err = errors.New("address not found")
			return Options{Locator: locator}
		}),
		Entry("when the lookup returns no country", func() Options {
			return Options{Locator: locator}
		}),
		Entry("when the lookup times out", func() Options {
			locator.country = "US"
			locator.delay = time.Second
			return Options{Locator: locator, LookupTimeout: 10 * time.Millisecond}
		}),
	)

	It("is silent above debug level", func() {
		locator.country = "US"
		o := Options{Locator: locator, Logger: zerolog.New(logs).Level(zerolog.InfoLevel)}
		req := httptest.NewRequest("GET", "/videos/show_5.ts", nil)
		NewDiagnostic(o).Log(context.Background(), req)
		Expect(logs.String()).To(BeEmpty())
	})
})
