package empathy

import (
	"context"
	"database/sql"
	"fmt"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Toggle flips the user's empathy mark on an article: delete the row if it
// exists, insert it otherwise. Returns the resulting state. The delete-first
// order makes a double toggle race settle as one on plus one off instead of
// a constraint error.
func (r *Repo) Toggle(ctx context.Context, userID, articleID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM empathies
		WHERE user_id = ? AND article_id = ?
	`, userID, articleID)
	if err != nil {
		return false, fmt.Errorf("toggle delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle delete rows: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO empathies (user_id, article_id)
		VALUES (?, ?)
		ON CONFLICT(user_id, article_id) DO NOTHING
	`, userID, articleID)
	if err != nil {
		return false, fmt.Errorf("toggle insert: %w", err)
	}
	return true, nil
}

func (r *Repo) Count(ctx context.Context, articleID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM empathies WHERE article_id = ?
	`, articleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count empathies: %w", err)
	}
	return n, nil
}

func (r *Repo) Has(ctx context.Context, userID, articleID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM empathies WHERE user_id = ? AND article_id = ?
	`, userID, articleID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has empathy: %w", err)
	}
	return true, nil
}
