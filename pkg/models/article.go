package models

import "time"

// Article is one stored news item. The url is the natural key: the store
// never creates two rows with the same url, regardless of which prefecture
// query fetched it.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt string    `json:"publishedAt,omitempty"` // opaque upstream timestamp, not parsed
	SourceName  string    `json:"sourceName,omitempty"`
	SourceURL   string    `json:"sourceUrl,omitempty"`
	Prefecture  string    `json:"prefecture"`
	CreatedAt   time.Time `json:"created_at"`
}
