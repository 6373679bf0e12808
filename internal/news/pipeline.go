package news

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"geonews/internal/geo"
	"geonews/pkg/models"
)

// Pipeline outcome taxonomy. Handlers translate these to HTTP statuses;
// nothing below this package ever sees a raw provider error.
var (
	ErrLocationNotResolved = errors.New("location not resolved")
	ErrUpstreamFetch       = errors.New("news fetch failed")
	ErrNoArticles          = errors.New("no articles found")
)

// Events receives a notification for every article the pipeline actually
// inserted. Implemented by the livefeed hub; nil disables it.
type Events interface {
	ArticleIngested(article models.Article)
}

// Pipeline orchestrates one location-to-news request: resolve the
// coordinate, fetch candidates, persist new ones, read the stored set back.
// Stateless across requests; safe for concurrent use.
type Pipeline struct {
	Resolver   geo.Resolver
	Searcher   Searcher
	Repo       *Repo
	Events     Events
	Log        zerolog.Logger
	MaxResults int
}

// GetNewsByLocation returns the full stored article set for the prefecture
// the coordinate resolves to. Reading back from the store rather than
// returning the fresh batch is deliberate: repeated queries accumulate a
// growing deduplicated corpus instead of only the provider's latest page.
func (p *Pipeline) GetNewsByLocation(ctx context.Context, lat, lon float64) ([]models.Article, error) {
	prefecture, err := p.Resolver.Resolve(ctx, lat, lon)
	if err != nil {
		p.Log.Info().Float64("lat", lat).Float64("lon", lon).
			Str("provider", p.Resolver.Name()).Msg("coordinate did not resolve")
		return nil, ErrLocationNotResolved
	}
	p.Log.Debug().Float64("lat", lat).Float64("lon", lon).
		Str("prefecture", prefecture).Msg("resolved")

	raws, err := p.Searcher.Search(ctx, prefecture, p.MaxResults)
	if err != nil {
		p.Log.Error().Err(err).Str("prefecture", prefecture).Msg("news fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	p.Log.Debug().Str("prefecture", prefecture).Int("candidates", len(raws)).Msg("fetched")

	inserted, skipped, failed := p.persistBatch(ctx, prefecture, raws)
	p.Log.Info().Str("prefecture", prefecture).
		Int("inserted", inserted).Int("skipped", skipped).Int("failed", failed).
		Msg("persisted batch")

	stored, err := p.Repo.ListByPrefecture(ctx, prefecture)
	if err != nil {
		return nil, fmt.Errorf("read back %s: %w", prefecture, err)
	}
	if len(stored) == 0 {
		return nil, ErrNoArticles
	}
	return stored, nil
}

// persistBatch inserts every candidate concurrently and waits for the whole
// batch. Failed inserts only lose that one article; the join never fails.
func (p *Pipeline) persistBatch(ctx context.Context, prefecture string, raws []RawArticle) (inserted, skipped, failed int) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, raw := range raws {
		wg.Add(1)
		go func(raw RawArticle) {
			defer wg.Done()

			res := p.Repo.InsertIfAbsent(ctx, toArticle(raw, prefecture))

			mu.Lock()
			defer mu.Unlock()
			switch res.Status {
			case StatusInserted:
				inserted++
				if p.Events != nil {
					p.Events.ArticleIngested(*res.Article)
				}
			case StatusSkipped:
				skipped++
			default:
				failed++
				p.Log.Warn().Err(res.Err).Str("url", raw.URL).Msg("article insert failed")
			}
		}(raw)
	}

	wg.Wait()
	return inserted, skipped, failed
}

func toArticle(raw RawArticle, prefecture string) models.Article {
	return models.Article{
		Title:       raw.Title,
		Description: raw.Description,
		Content:     raw.Content,
		URL:         raw.URL,
		ImageURL:    raw.Image,
		PublishedAt: raw.PublishedAt,
		SourceName:  raw.Source.Name,
		SourceURL:   raw.Source.URL,
		Prefecture:  prefecture,
	}
}
