package browse

// DefaultPageSize は1ページあたりの件数。セッション中は変更しない。
const DefaultPageSize = 20

// Pagination は現在のoffsetと固定のlimitを保持する。
// 並行安全ではないため、所有者（Session）のロック下で使用する。
type Pagination struct {
	offset int
	limit  int
}

// NewPagination はoffset 0のPaginationを生成する。limitが0以下の場合はDefaultPageSizeを使用する。
func NewPagination(limit int) *Pagination {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Pagination{limit: limit}
}

// Offset は現在のoffsetを返す。
func (p *Pagination) Offset() int { return p.offset }

// Limit は1ページあたりの件数を返す。
func (p *Pagination) Limit() int { return p.limit }

// PageNumber は1始まりのページ番号を返す。
func (p *Pagination) PageNumber() int {
	return p.offset/p.limit + 1
}

// Next は次のページへ進む。
func (p *Pagination) Next() {
	p.offset += p.limit
}

// CanPrev は前のページへ戻れるかを返す。
func (p *Pagination) CanPrev() bool {
	return p.offset >= p.limit
}

// Prev は前のページへ戻る。0未満になる場合は何もせずfalseを返す。
func (p *Pagination) Prev() bool {
	if !p.CanPrev() {
		return false
	}
	p.offset -= p.limit
	return true
}

// Reset は先頭ページへ戻す。offsetが変化した場合はtrueを返す。
func (p *Pagination) Reset() bool {
	changed := p.offset != 0
	p.offset = 0
	return changed
}
