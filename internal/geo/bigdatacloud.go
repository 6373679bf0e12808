package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const bigDataCloudBase = "https://api.bigdatacloud.net"

// BigDataCloud resolves through the BigDataCloud reverse-geocode-client
// endpoint. The subdivision name comes back in principalSubdivision; when
// that is empty the ISO 3166-2 code (JP-13 style) is mapped through the
// prefecture code table instead.
type BigDataCloud struct {
	Client  *http.Client
	BaseURL string
}

func NewBigDataCloud(baseURL string) *BigDataCloud {
	if baseURL == "" {
		baseURL = bigDataCloudBase
	}
	return &BigDataCloud{Client: newHTTPClient(), BaseURL: baseURL}
}

func (b *BigDataCloud) Name() string { return "bigdatacloud" }

type bigDataCloudResponse struct {
	PrincipalSubdivision     string `json:"principalSubdivision"`
	PrincipalSubdivisionCode string `json:"principalSubdivisionCode"`
}

func (b *BigDataCloud) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	u, err := url.Parse(b.BaseURL + "/data/reverse-geocode-client")
	if err != nil {
		return "", ErrNotFound
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("localityLanguage", "ja")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", ErrNotFound
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return "", ErrNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrNotFound
	}

	var body bigDataCloudResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", ErrNotFound
	}

	if body.PrincipalSubdivision != "" {
		return body.PrincipalSubdivision, nil
	}

	if code, ok := strings.CutPrefix(body.PrincipalSubdivisionCode, "JP-"); ok {
		if name, ok := prefNameByCode[code]; ok {
			return name, nil
		}
	}
	return "", ErrNotFound
}
