// Package geo resolves client locations and logs them for diagnostics.
package geo

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

var ErrNoCountry = errors.New("no country for address")

// Locator resolves an IP address to an ISO 3166-1 alpha-2 country code.
type Locator interface {
	CountryCode(ctx context.Context, ip net.IP) (string, error)
}

type countryReader interface {
	Country(ip net.IP) (*geoip2.Country, error)
	Close() error
}

// MaxMind is a Locator backed by a MaxMind GeoIP2 or GeoLite2 database.
type MaxMind struct {
	db countryReader
}

// OpenMaxMind opens the .mmdb file at path.
func OpenMaxMind(path string) (*MaxMind, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &MaxMind{db: db}, nil
}

func (m *MaxMind) CountryCode(ctx context.Context, ip net.IP) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	record, err := m.db.Country(ip)
	if err != nil {
		return "", err
	}
	if record.Country.IsoCode == "" {
		return "", ErrNoCountry
	}
	return record.Country.IsoCode, nil
}

func (m *MaxMind) Close() error {
	return m.db.Close()
}
