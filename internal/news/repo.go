package news

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"geonews/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type InsertStatus string

const (
	StatusInserted InsertStatus = "inserted"
	StatusSkipped  InsertStatus = "skipped"
	StatusError    InsertStatus = "error"
)

// InsertResult reports one InsertIfAbsent outcome. Errors are captured here
// instead of returned so bulk callers keep processing the rest of a batch.
type InsertResult struct {
	Status  InsertStatus
	Article *models.Article // the surviving row; nil on error
	Err     error
}

// InsertIfAbsent inserts the article keyed by url, assigning a fresh id, or
// reports the existing row untouched. ON CONFLICT DO NOTHING makes the
// existence check and the insert one atomic statement, so two concurrent
// calls with the same url produce exactly one row.
func (r *Repo) InsertIfAbsent(ctx context.Context, a models.Article) InsertResult {
	if a.URL == "" {
		return InsertResult{Status: StatusError, Err: fmt.Errorf("insert article: empty url")}
	}
	a.ID = uuid.NewString()

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO news_articles
			(id, url, title, description, content, image_url, published_at, source_name, source_url, prefecture)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, a.ID, a.URL, a.Title, a.Description, a.Content, a.ImageURL, a.PublishedAt, a.SourceName, a.SourceURL, a.Prefecture)
	if err != nil {
		return InsertResult{Status: StatusError, Err: fmt.Errorf("insert article: %w", err)}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return InsertResult{Status: StatusError, Err: fmt.Errorf("insert article rows: %w", err)}
	}

	stored, err := r.GetByURL(ctx, a.URL)
	if err != nil {
		return InsertResult{Status: StatusError, Err: err}
	}
	if stored == nil {
		return InsertResult{Status: StatusError, Err: fmt.Errorf("insert article: row vanished for %s", a.URL)}
	}

	status := StatusSkipped
	if n > 0 {
		status = StatusInserted
	}
	return InsertResult{Status: status, Article: stored}
}

func (r *Repo) GetByURL(ctx context.Context, articleURL string) (*models.Article, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, url, title, description, content, image_url, published_at, source_name, source_url, prefecture, created_at
		FROM news_articles
		WHERE url = ?
	`, articleURL)
	return scanArticle(row)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, url, title, description, content, image_url, published_at, source_name, source_url, prefecture, created_at
		FROM news_articles
		WHERE id = ?
	`, id)
	return scanArticle(row)
}

// ListByPrefecture returns every article filed under the given prefecture
// tag. Order is unspecified.
func (r *Repo) ListByPrefecture(ctx context.Context, prefecture string) ([]models.Article, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, url, title, description, content, image_url, published_at, source_name, source_url, prefecture, created_at
		FROM news_articles
		WHERE prefecture = ?
	`, prefecture)
	if err != nil {
		return nil, fmt.Errorf("list by prefecture: %w", err)
	}
	defer rows.Close()

	out := make([]models.Article, 0)
	for rows.Next() {
		a, err := scanArticleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	return out, nil
}

func scanArticle(row *sql.Row) (*models.Article, error) {
	var (
		a           models.Article
		title       sql.NullString
		description sql.NullString
		content     sql.NullString
		imageURL    sql.NullString
		publishedAt sql.NullString
		sourceName  sql.NullString
		sourceURL   sql.NullString
	)
	if err := row.Scan(
		&a.ID, &a.URL, &title, &description, &content, &imageURL, &publishedAt, &sourceName, &sourceURL, &a.Prefecture, &a.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan article: %w", err)
	}
	fillOptional(&a, title, description, content, imageURL, publishedAt, sourceName, sourceURL)
	return &a, nil
}

func scanArticleRow(rows *sql.Rows) (models.Article, error) {
	var (
		a           models.Article
		title       sql.NullString
		description sql.NullString
		content     sql.NullString
		imageURL    sql.NullString
		publishedAt sql.NullString
		sourceName  sql.NullString
		sourceURL   sql.NullString
	)
	if err := rows.Scan(
		&a.ID, &a.URL, &title, &description, &content, &imageURL, &publishedAt, &sourceName, &sourceURL, &a.Prefecture, &a.CreatedAt,
	); err != nil {
		return a, fmt.Errorf("scan article: %w", err)
	}
	fillOptional(&a, title, description, content, imageURL, publishedAt, sourceName, sourceURL)
	return a, nil
}

func fillOptional(a *models.Article, title, description, content, imageURL, publishedAt, sourceName, sourceURL sql.NullString) {
	a.Title = title.String
	a.Description = description.String
	a.Content = content.String
	a.ImageURL = imageURL.String
	a.PublishedAt = publishedAt.String
	a.SourceName = sourceName.String
	a.SourceURL = sourceURL.String
}
