package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

const gsiMuniBase = "https://mreversegeocoder.gsi.go.jp"

// GSIMuni resolves through the GSI LonLatToAddress endpoint, which returns a
// JIS X 0401/0402 municipality code. The first two digits are the prefecture
// code, looked up in prefNameByCode.
type GSIMuni struct {
	Client  *http.Client
	BaseURL string
}

func NewGSIMuni(baseURL string) *GSIMuni {
	if baseURL == "" {
		baseURL = gsiMuniBase
	}
	return &GSIMuni{Client: newHTTPClient(), BaseURL: baseURL}
}

func (g *GSIMuni) Name() string { return "gsi-muni" }

type gsiMuniResponse struct {
	Results struct {
		MuniCd string `json:"muniCd"`
	} `json:"results"`
}

func (g *GSIMuni) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	u, err := url.Parse(g.BaseURL + "/reverse-geocoder/LonLatToAddress")
	if err != nil {
		return "", ErrNotFound
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
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

	var body gsiMuniResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", ErrNotFound
	}
	if len(body.Results.MuniCd) < 2 {
		return "", ErrNotFound
	}

	name, ok := prefNameByCode[body.Results.MuniCd[:2]]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}
