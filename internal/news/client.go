package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"geonews/pkg/config"
)

// RawArticle is one candidate article as the news provider returns it,
// before the store assigns an id and a prefecture tag.
type RawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// Searcher is the news-search capability the pipeline consumes. A fetch
// failure is an error, observably different from a successful empty result.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]RawArticle, error)
}

// Client queries the GNews search API, fixed to Japanese-language,
// Japan-country results.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
}

func NewClient(cfg config.NewsConfig) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
	}
}

type searchResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []RawArticle `json:"articles"`
}

func (c *Client) Search(ctx context.Context, query string, max int) ([]RawArticle, error) {
	if query == "" {
		return nil, fmt.Errorf("gnews: empty query")
	}
	if max < 1 || max > 10 {
		max = 10
	}

	u, err := url.Parse(c.BaseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("gnews: base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("lang", "ja")
	q.Set("country", "jp")
	q.Set("max", strconv.Itoa(max))
	q.Set("sortby", "publishedAt")
	q.Set("token", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("gnews: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gnews: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gnews: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gnews: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("gnews: decode: %w", err)
	}
	return sr.Articles, nil
}
