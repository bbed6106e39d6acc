package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 2024050103_unique_word_text.sql
var uniqueWordTextSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, uniqueWordTextSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
ALTER TABLE words DROP CONSTRAINT IF EXISTS words_text_key;
CREATE INDEX IF NOT EXISTS words_text_idx ON words (text);`)
			return err
		},
	)
}
