// Package model はドメインモデルを定義する。
package model

import "strconv"

// FoodItem は livsmedelsdatabasen の1件の食品を表す。
// Nummer が一意キーであり、同じ Nummer を持つ2件は同一の食品として扱う。
type FoodItem struct {
	Nummer     int             `json:"nummer"`
	Name       string          `json:"namn"`
	GroupLabel string          `json:"livsmedelsgrupp,omitempty"`
	GroupID    *int            `json:"livsmedelsgrupp_id,omitempty"`
	Status     string          `json:"livsmedelstatus,omitempty"`
	Nutrients  []NutrientValue `json:"varden"`
	Links      []Link          `json:"_links,omitempty"`
}

// SameAs は2件の食品が同一エンティティかどうかを返す。
func (f FoodItem) SameAs(other FoodItem) bool {
	return f.Nummer == other.Nummer
}

// DisplayName は表示用の名前を返す。名前が未取得の場合は "#<nummer>" を返す。
func (f FoodItem) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return "#" + strconv.Itoa(f.Nummer)
}

// NutrientValue は食品に属する1件の栄養価を表す。
// 独立した識別子を持たず、詳細取得のたびに丸ごと置き換えられる。
// 出典関連のフィールドは加工せずにそのまま保持する。
type NutrientValue struct {
	Name         string  `json:"namn"`
	EuroFIRCode  string  `json:"euroFIRkod,omitempty"`
	Abbreviation string  `json:"forkortning,omitempty"`
	Value        float64 `json:"varde"`
	Unit         string  `json:"enhet,omitempty"`

	Sort              string `json:"sort,omitempty"`
	Portion           string `json:"portion,omitempty"`
	ValueType         string `json:"vardeTyp,omitempty"`
	Origin            string `json:"ursprung,omitempty"`
	PublicationRef    string `json:"publikationsreferens,omitempty"`
	MethodType        string `json:"metodtyp,omitempty"`
	ProductionMethod  string `json:"framtagningsmetod,omitempty"`
	MethodDescription string `json:"metodbeskrivning,omitempty"`
}

// Link はカタログAPIのハイパーメディアリンク。
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Meta はページのメタデータ。
type Meta struct {
	TotalRecords int `json:"totalRecords"`
	Offset       int `json:"offset"`
	Limit        int `json:"limit"`
	Count        int `json:"count"`
}

// Page は1回の一覧取得の結果。受信後はイミュータブルとして扱い、
// 次の取得結果で丸ごと置き換える。
type Page struct {
	Meta  Meta       `json:"_meta"`
	Links []Link     `json:"_links,omitempty"`
	Items []FoodItem `json:"livsmedel"`
}

// PageNumber は1始まりのページ番号を返す。
func (p *Page) PageNumber() int {
	return PageNumber(p.Meta.Offset, p.Meta.Limit)
}

// TotalPages は総ページ数を返す。limitが0以下の場合は0を返す。
func (p *Page) TotalPages() int {
	if p.Meta.Limit <= 0 {
		return 0
	}
	return (p.Meta.TotalRecords + p.Meta.Limit - 1) / p.Meta.Limit
}

// Find は指定された番号の食品をページ内から探す。
func (p *Page) Find(nummer int) (FoodItem, bool) {
	for _, item := range p.Items {
		if item.Nummer == nummer {
			return item, true
		}
	}
	return FoodItem{}, false
}

// PageNumber はoffsetとlimitから1始まりのページ番号を計算する。
func PageNumber(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
