package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/livsmedel/internal/model"
)

// PostgresSearchEventRepo はPostgreSQLを使用した検索ログリポジトリ。
type PostgresSearchEventRepo struct {
	db *sql.DB
}

// NewPostgresSearchEventRepo はPostgresSearchEventRepoを生成する。
func NewPostgresSearchEventRepo(db *sql.DB) *PostgresSearchEventRepo {
	return &PostgresSearchEventRepo{db: db}
}

// Insert は確定した検索を1件記録する。
func (r *PostgresSearchEventRepo) Insert(ctx context.Context, event *model.SearchEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_events (id, session_id, search_text, language, page_offset, page_limit, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.SessionID, event.Query.Search, int(event.Query.Language),
		event.Query.Offset, event.Query.Limit, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("検索ログの記録に失敗しました: %w", err)
	}
	return nil
}

// TopSearches はsince以降に多く確定された検索テキストを件数の降順で返す。
func (r *PostgresSearchEventRepo) TopSearches(ctx context.Context, since time.Time, limit int) ([]SearchCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT search_text, language, count(*) AS cnt, max(occurred_at) AS last_seen
		 FROM search_events
		 WHERE occurred_at >= $1 AND search_text <> ''
		 GROUP BY search_text, language
		 ORDER BY cnt DESC, last_seen DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("検索ログの集計に失敗しました: %w", err)
	}
	defer rows.Close()

	var counts []SearchCount
	for rows.Next() {
		var c SearchCount
		var lang int
		if err := rows.Scan(&c.Text, &lang, &c.Count, &c.LastSeen); err != nil {
			return nil, fmt.Errorf("検索ログのスキャンに失敗しました: %w", err)
		}
		c.Language = model.Language(lang)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("検索ログの読み込みに失敗しました: %w", err)
	}
	return counts, nil
}
