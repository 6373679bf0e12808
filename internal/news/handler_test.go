package news

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"geonews/internal/geo"
	"geonews/pkg/models"
)

func newTestRouter(t *testing.T, resolver geo.Resolver, searcher Searcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewRepo(openTestDB(t))
	p := &Pipeline{
		Resolver:   resolver,
		Searcher:   searcher,
		Repo:       repo,
		Log:        zerolog.Nop(),
		MaxResults: 10,
	}

	router := gin.New()
	NewHandler(p, repo).RegisterRoutes(router.Group("/news"))
	return router
}

func postLocation(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/news/get-news-by-location", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetNewsByLocationOK(t *testing.T) {
	router := newTestRouter(t,
		&fakeResolver{prefecture: "東京都"},
		&fakeSearcher{articles: []RawArticle{
			rawArticle("https://example.com/a"),
			rawArticle("https://example.com/b"),
		}})

	w := postLocation(router, `{"latitude": 35.6895, "longitude": 139.6917}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var articles []models.Article
	if err := json.Unmarshal(w.Body.Bytes(), &articles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("len = %d, want 2", len(articles))
	}
}

func TestGetNewsByLocationStatuses(t *testing.T) {
	tests := []struct {
		name     string
		resolver geo.Resolver
		searcher Searcher
		body     string
		want     int
	}{
		{
			name:     "location not resolved",
			resolver: &fakeResolver{err: geo.ErrNotFound},
			searcher: &fakeSearcher{},
			body:     `{"latitude": 0.0, "longitude": 0.0}`,
			want:     http.StatusNotFound,
		},
		{
			name:     "upstream fetch failed",
			resolver: &fakeResolver{prefecture: "東京都"},
			searcher: &fakeSearcher{err: errors.New("boom")},
			body:     `{"latitude": 35.0, "longitude": 139.0}`,
			want:     http.StatusBadGateway,
		},
		{
			name:     "no articles found",
			resolver: &fakeResolver{prefecture: "東京都"},
			searcher: &fakeSearcher{},
			body:     `{"latitude": 35.0, "longitude": 139.0}`,
			want:     http.StatusNotFound,
		},
		{
			name:     "invalid json",
			resolver: &fakeResolver{prefecture: "東京都"},
			searcher: &fakeSearcher{},
			body:     `{not json`,
			want:     http.StatusBadRequest,
		},
		{
			name:     "missing longitude",
			resolver: &fakeResolver{prefecture: "東京都"},
			searcher: &fakeSearcher{},
			body:     `{"latitude": 35.0}`,
			want:     http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.resolver, tt.searcher)
			w := postLocation(router, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if w.Code != http.StatusOK && !strings.Contains(w.Body.String(), "detail") {
				t.Errorf("error body missing detail: %s", w.Body.String())
			}
		})
	}
}

// Raw upstream error text stays out of the response body.
func TestUpstreamErrorTextDoesNotLeak(t *testing.T) {
	router := newTestRouter(t,
		&fakeResolver{prefecture: "東京都"},
		&fakeSearcher{err: errors.New("secret-internal-detail")})

	w := postLocation(router, `{"latitude": 35.0, "longitude": 139.0}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret-internal-detail") {
		t.Errorf("upstream error leaked: %s", w.Body.String())
	}
}

func TestListByPrefectureRoute(t *testing.T) {
	router := newTestRouter(t,
		&fakeResolver{prefecture: "東京都"},
		&fakeSearcher{articles: []RawArticle{rawArticle("https://example.com/a")}})

	// Ingest once, then read the stored set back directly.
	if w := postLocation(router, `{"latitude": 35.0, "longitude": 139.0}`); w.Code != http.StatusOK {
		t.Fatalf("ingest status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/news/prefecture/"+"東京都", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	var articles []models.Article
	if err := json.Unmarshal(w.Body.Bytes(), &articles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("len = %d, want 1", len(articles))
	}

	// Unknown prefecture is an empty list, not an error.
	req = httptest.NewRequest(http.MethodGet, "/news/prefecture/"+"沖縄県", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("status = %d body = %s, want 200 []", w.Code, w.Body.String())
	}
}
