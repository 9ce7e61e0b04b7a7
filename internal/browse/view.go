package browse

import (
	"github.com/hitoshi/livsmedel/internal/model"
)

// View はセッションの表示用スナップショット。ドライバはこれだけを見て描画する。
type View struct {
	ID            string      `json:"id"`
	Query         model.Query `json:"query"`
	SearchPending bool        `json:"search_pending"`
	List          ListView    `json:"list"`
	Detail        DetailView  `json:"detail"`
}

// ListView は一覧部分のスナップショット。
type ListView struct {
	Status       string           `json:"status"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"total_pages"`
	TotalRecords int              `json:"total_records"`
	Items        []model.FoodItem `json:"items"`
	Error        string           `json:"error,omitempty"`
	CanPrev      bool             `json:"can_prev"`
	CanNext      bool             `json:"can_next"`
}

// DetailView は詳細部分のスナップショット。
type DetailView struct {
	Status        string                `json:"status"`
	Selected      *model.FoodItem       `json:"selected,omitempty"`
	Nutrients     []model.NutrientValue `json:"nutrients,omitempty"`
	Summary       []MacroNutrient       `json:"summary,omitempty"`
	Error         string                `json:"error,omitempty"`
	Transitioning bool                  `json:"transitioning"`
}

// PageLabel は "Sida N" / "Page N" 形式のラベルを返す。総ページ数が分かる場合は併記する。
func (v View) PageLabel() string {
	return model.PageLabel(v.Query.Language, v.List.Page, v.List.TotalPages)
}

// View は現在の状態のスナップショットを返す。
// ページ番号は表示中のページではなく現在のoffsetから計算するため、読み込み中でも即座に反映される。
func (s *Session) View() View {
	s.mu.Lock()
	q := s.currentQueryLocked()
	canPrev := s.pager.CanPrev()
	var selected *model.FoodItem
	if s.selected != nil {
		item := *s.selected
		selected = &item
	}
	s.mu.Unlock()

	ls := s.list.State()
	ds := s.detail.State()

	lv := ListView{
		Status:  ls.Status.String(),
		Page:    q.PageNumber(),
		Items:   []model.FoodItem{},
		Error:   ls.Error,
		CanPrev: canPrev,
		CanNext: !ls.Status.IsLoading(),
	}
	if ls.Page != nil {
		lv.Items = ls.Page.Items
		lv.TotalPages = ls.Page.TotalPages()
		lv.TotalRecords = ls.Page.Meta.TotalRecords
	}

	dv := DetailView{
		Status:        ds.Status.String(),
		Selected:      selected,
		Error:         ds.Error,
		Transitioning: ds.Transitioning,
	}
	if ds.Status == model.LoadStatusSuccess {
		dv.Selected = ds.Item
		dv.Nutrients = ds.Nutrients
		dv.Summary = ds.Summary
	}

	return View{
		ID:            s.id,
		Query:         q,
		SearchPending: s.debouncer.Pending(),
		List:          lv,
		Detail:        dv,
	}
}
