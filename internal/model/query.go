package model

import (
	"fmt"
	"time"
)

// Query は現在の一覧リクエストを一意に決めるタプル。
// いずれかのフィールドが変わると、実行中のリクエストは概念上無効になる。
// 比較可能な値型なので == で同一性を判定できる。
type Query struct {
	Offset   int      `json:"offset"`
	Limit    int      `json:"limit"`
	Language Language `json:"language"`
	Search   string   `json:"search"`
}

// PageNumber は1始まりのページ番号を返す。
func (q Query) PageNumber() int {
	return PageNumber(q.Offset, q.Limit)
}

// SearchEvent は確定した検索クエリの記録。検索ログ用。
type SearchEvent struct {
	ID         string
	SessionID  string
	Query      Query
	OccurredAt time.Time
}

// PageLabel は "Sida N" / "Page N" 形式のページラベルを返す。
// totalPagesが1以上の場合は "Sida N / M" のように総ページ数を併記する。
func PageLabel(lang Language, page, totalPages int) string {
	word := "Sida"
	if lang == LanguageEnglish {
		word = "Page"
	}
	if totalPages > 0 {
		return fmt.Sprintf("%s %d / %d", word, page, totalPages)
	}
	return fmt.Sprintf("%s %d", word, page)
}
