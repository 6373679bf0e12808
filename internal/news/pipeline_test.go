package news

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"geonews/internal/geo"
	"geonews/pkg/models"
)

type fakeResolver struct {
	prefecture string
	err        error
}

func (f *fakeResolver) Name() string { return "fake" }

func (f *fakeResolver) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.prefecture, nil
}

type fakeSearcher struct {
	articles []RawArticle
	err      error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, max int) ([]RawArticle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type recordingEvents struct {
	mu       sync.Mutex
	articles []models.Article
}

func (r *recordingEvents) ArticleIngested(a models.Article) {
	r.mu.Lock()
	r.articles = append(r.articles, a)
	r.mu.Unlock()
}

func rawArticle(url string) RawArticle {
	return RawArticle{Title: "見出し", URL: url}
}

func newTestPipeline(t *testing.T, resolver geo.Resolver, searcher Searcher) (*Pipeline, *recordingEvents) {
	t.Helper()
	events := &recordingEvents{}
	return &Pipeline{
		Resolver:   resolver,
		Searcher:   searcher,
		Repo:       NewRepo(openTestDB(t)),
		Events:     events,
		Log:        zerolog.Nop(),
		MaxResults: 10,
	}, events
}

func TestPipelineLocationNotResolved(t *testing.T) {
	p, _ := newTestPipeline(t, &fakeResolver{err: geo.ErrNotFound}, &fakeSearcher{})

	_, err := p.GetNewsByLocation(context.Background(), 0.0, 0.0)
	if !errors.Is(err, ErrLocationNotResolved) {
		t.Errorf("err = %v, want ErrLocationNotResolved", err)
	}
}

func TestPipelineUpstreamFetchFailed(t *testing.T) {
	p, _ := newTestPipeline(t,
		&fakeResolver{prefecture: "東京都"},
		&fakeSearcher{err: errors.New("gnews: status 500")})

	_, err := p.GetNewsByLocation(context.Background(), 35.6895, 139.6917)
	if !errors.Is(err, ErrUpstreamFetch) {
		t.Errorf("err = %v, want ErrUpstreamFetch", err)
	}
}

// A successful fetch with zero results and an empty store is NoArticles,
// not a fetch failure: the two outcomes must stay distinguishable.
func TestPipelineNoArticlesFound(t *testing.T) {
	p, _ := newTestPipeline(t,
		&fakeResolver{prefecture: "東京都"},
		&fakeSearcher{articles: nil})

	_, err := p.GetNewsByLocation(context.Background(), 35.6895, 139.6917)
	if !errors.Is(err, ErrNoArticles) {
		t.Errorf("err = %v, want ErrNoArticles", err)
	}
	if errors.Is(err, ErrUpstreamFetch) {
		t.Error("ErrNoArticles must not be an ErrUpstreamFetch")
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	searcher := &fakeSearcher{articles: []RawArticle{
		rawArticle("https://example.com/a"),
		rawArticle("https://example.com/b"),
	}}
	p, events := newTestPipeline(t, &fakeResolver{prefecture: "東京都"}, searcher)
	ctx := context.Background()

	got, err := p.GetNewsByLocation(ctx, 35.6895, 139.6917)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("first run returned %d articles, want 2", len(got))
	}

	// Second run overlaps on A: the store must grow to {A, B, C} with A
	// not duplicated.
	searcher.articles = []RawArticle{
		rawArticle("https://example.com/a"),
		rawArticle("https://example.com/c"),
	}

	got, err = p.GetNewsByLocation(ctx, 35.6895, 139.6917)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("second run returned %d articles, want 3", len(got))
	}

	urls := make(map[string]int)
	for _, a := range got {
		urls[a.URL]++
		if a.Prefecture != "東京都" {
			t.Errorf("prefecture = %s, want 東京都", a.Prefecture)
		}
		if a.ID == "" {
			t.Error("stored article has no id")
		}
	}
	for _, u := range []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"} {
		if urls[u] != 1 {
			t.Errorf("url %s appears %d times, want 1", u, urls[u])
		}
	}

	// Only the three actual inserts produce livefeed events.
	events.mu.Lock()
	defer events.mu.Unlock()
	if len(events.articles) != 3 {
		t.Errorf("events = %d, want 3", len(events.articles))
	}
}

// One bad article (empty url) must not stop the rest of the batch.
func TestPipelinePartialPersistFailure(t *testing.T) {
	p, _ := newTestPipeline(t,
		&fakeResolver{prefecture: "東京都"},
		&fakeSearcher{articles: []RawArticle{
			rawArticle(""),
			rawArticle("https://example.com/ok"),
		}})

	got, err := p.GetNewsByLocation(context.Background(), 35.6895, 139.6917)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://example.com/ok" {
		t.Errorf("got = %+v, want just the ok article", got)
	}
}

func TestPipelineNilEvents(t *testing.T) {
	p, _ := newTestPipeline(t,
		&fakeResolver{prefecture: "東京都"},
		&fakeSearcher{articles: []RawArticle{rawArticle("https://example.com/a")}})
	p.Events = nil

	if _, err := p.GetNewsByLocation(context.Background(), 35.6895, 139.6917); err != nil {
		t.Fatalf("run with nil events: %v", err)
	}
}
