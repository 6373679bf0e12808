package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

const gsiBase = "https://mreversegeocoding.gsi.go.jp"

// GSI resolves through the GSI reverse-geocoding endpoint, which returns the
// prefecture name directly in results.pref.
type GSI struct {
	Client  *http.Client
	BaseURL string
}

func NewGSI(baseURL string) *GSI {
	if baseURL == "" {
		baseURL = gsiBase
	}
	return &GSI{Client: newHTTPClient(), BaseURL: baseURL}
}

func (g *GSI) Name() string { return "gsi" }

type gsiResponse struct {
	Results struct {
		Pref string `json:"pref"`
	} `json:"results"`
}

func (g *GSI) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	u, err := url.Parse(g.BaseURL + "/reverse-geocoding/ds/revgeoinfo")
	if err != nil {
		return "", ErrNotFound
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("outtype", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", ErrNotFound
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", ErrNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrNotFound
	}

	var body gsiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", ErrNotFound
	}
	if body.Results.Pref == "" {
		return "", ErrNotFound
	}
	return body.Results.Pref, nil
}
