package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// runInTx は fn をトランザクション内で実行し、エラーがなければコミットする
// fn がエラーを返した場合はロールバックする
func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}
