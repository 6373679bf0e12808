// Package geo resolves WGS84 coordinates to a Japanese prefecture name
// through one of several external reverse-geocoding providers. The provider
// response shapes are incompatible, so each backend keeps its own parsing;
// a deployment picks exactly one via configuration.
package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"geonews/pkg/config"
)

// ErrNotFound is the only failure a Resolver reports: transport errors,
// non-2xx responses and missing response fields all collapse into it so
// provider internals never leak to callers.
var ErrNotFound = errors.New("no administrative area for coordinate")

// Resolver is implemented by each reverse-geocoding backend.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, lat, lon float64) (string, error)
}

const requestTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// FromConfig selects the provider backend for this deployment.
func FromConfig(cfg config.GeocoderConfig) (Resolver, error) {
	switch cfg.Provider {
	case "gsi":
		return NewGSI(cfg.BaseURL), nil
	case "gsi-muni":
		return NewGSIMuni(cfg.BaseURL), nil
	case "bigdatacloud":
		return NewBigDataCloud(cfg.BaseURL), nil
	case "nominatim":
		return NewNominatim(cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Provider)
	}
}
