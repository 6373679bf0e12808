package livefeed

import (
	"time"

	"geonews/pkg/models"
)

type ArticleEvent struct {
	Type       string         `json:"type"` // "article.ingested"
	Prefecture string         `json:"prefecture"`
	Article    models.Article `json:"article"`
	At         time.Time      `json:"at"`
}

// ArticleIngested satisfies the pipeline's Events interface.
func (h *Hub) ArticleIngested(article models.Article) {
	h.BroadcastJSON(ArticleEvent{
		Type:       "article.ingested",
		Prefecture: article.Prefecture,
		Article:    article,
		At:         time.Now().UTC(),
	})
}
