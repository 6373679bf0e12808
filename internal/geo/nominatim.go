package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

const nominatimBase = "https://nominatim.openstreetmap.org"

// Nominatim resolves through the OSM Nominatim reverse endpoint. Prefectures
// usually arrive in address.state; rural Hokkaido responses sometimes carry
// only address.county, so that is the fallback.
type Nominatim struct {
	Client  *http.Client
	BaseURL string
}

func NewNominatim(baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = nominatimBase
	}
	return &Nominatim{Client: newHTTPClient(), BaseURL: baseURL}
}

func (n *Nominatim) Name() string { return "nominatim" }

type nominatimResponse struct {
	Address struct {
		State  string `json:"state"`
		County string `json:"county"`
	} `json:"address"`
}

func (n *Nominatim) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	u, err := url.Parse(n.BaseURL + "/reverse")
	if err != nil {
		return "", ErrNotFound
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "jsonv2")
	q.Set("accept-language", "ja")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", ErrNotFound
	}
	// Nominatim's usage policy rejects requests without an identifying UA.
	req.Header.Set("User-Agent", "geonews/1.0")

	resp, err := n.Client.Do(req)
	if err != nil {
		return "", ErrNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrNotFound
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", ErrNotFound
	}

	if body.Address.State != "" {
		return body.Address.State, nil
	}
	if body.Address.County != "" {
		return body.Address.County, nil
	}
	return "", ErrNotFound
}
