// Package repository はデータ永続化のインターフェースを定義する。
// 永続化するのは確定した検索クエリのみで、カタログのデータは保存しない。
// 保持期間を過ぎたログの削除は worker/cleanup が行う。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/livsmedel/internal/model"
)

// SearchCount は検索テキストごとの集計結果。
type SearchCount struct {
	Text     string
	Language model.Language
	Count    int64
	LastSeen time.Time
}

// SearchEventRepository は検索ログの永続化インターフェース。
type SearchEventRepository interface {
	// Insert は確定した検索を1件記録する。
	Insert(ctx context.Context, event *model.SearchEvent) error

	// TopSearches はsince以降に多く確定された検索テキストを件数の降順で返す。
	// 空文字列の検索（検索の解除）は含めない。
	TopSearches(ctx context.Context, since time.Time, limit int) ([]SearchCount, error)
}
