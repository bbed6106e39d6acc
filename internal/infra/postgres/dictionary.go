package postgres

import (
	"context"
	"errors"
	"fmt"

	"kidlingo-service/internal/domain"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Dictionary reads and writes the words table through pgx.
type Dictionary struct {
	pool *pgxpool.Pool
}

func NewDictionary(pool *pgxpool.Pool) *Dictionary {
	return &Dictionary{pool: pool}
}

// LoadWords returns the category in position order; unknown categories are empty.
func (d *Dictionary) LoadWords(ctx context.Context, category string) ([]domain.Word, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT text, translation, category FROM words WHERE category=$1 ORDER BY position, id`, category)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	defer rows.Close()

	words := []domain.Word{}
	for rows.Next() {
		var w domain.Word
		if err := rows.Scan(&w.Text, &w.Translation, &w.Category); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// TranslationOf looks a term up by text; words_text_key keeps it unique.
func (d *Dictionary) TranslationOf(ctx context.Context, text string) (string, error) {
	var translation string
	err := d.pool.QueryRow(ctx, `SELECT translation FROM words WHERE text=$1`, text).Scan(&translation)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrWordNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup translation: %w", err)
	}
	return translation, nil
}

// SaveWords upserts by (category, text); new words are appended after the category's last position.
// The batch runs in one transaction, so a term filed under another category rolls it back
// with domain.ErrDuplicateWord.
func (d *Dictionary) SaveWords(ctx context.Context, words []domain.Word) error {
	if len(words) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, w := range words {
		batch.Queue(`
INSERT INTO words (category, text, translation, position)
VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position) + 1, 0) FROM words WHERE category=$1))
ON CONFLICT (category, text) DO UPDATE SET translation = EXCLUDED.translation`,
			w.Category, w.Text, w.Translation)
	}

	br := d.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range words {
		if _, err := br.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateWord, pgErr.Detail)
			}
			return fmt.Errorf("save words: %w", err)
		}
	}
	return nil
}

const uniqueViolation = "23505"
