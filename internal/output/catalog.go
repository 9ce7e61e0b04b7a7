package output

import (
	"strconv"
	"time"

	"github.com/hitoshi/livsmedel/internal/browse"
	"github.com/hitoshi/livsmedel/internal/model"
	"github.com/hitoshi/livsmedel/internal/repository"
)

// labels は言語ごとの見出し。
type labels struct {
	number, name, group       string
	value, unit, code         string
	noItems, summary, details string
	search, count, lastSeen   string
	language                  string
}

var labelsSv = labels{
	number: "NUMMER", name: "NAMN", group: "GRUPP",
	value: "VÄRDE", unit: "ENHET", code: "EUROFIR",
	noItems: "Inga livsmedel hittades.", summary: "Näringsinnehåll", details: "Alla näringsvärden",
	search: "SÖKNING", count: "ANTAL", lastSeen: "SENAST", language: "SPRÅK",
}

var labelsEn = labels{
	number: "NUMBER", name: "NAME", group: "GROUP",
	value: "VALUE", unit: "UNIT", code: "EUROFIR",
	noItems: "No food items found.", summary: "Nutrition summary", details: "All nutrient values",
	search: "SEARCH", count: "COUNT", lastSeen: "LAST SEEN", language: "LANGUAGE",
}

func labelsFor(lang model.Language) labels {
	if lang == model.LanguageEnglish {
		return labelsEn
	}
	return labelsSv
}

// List は一覧ページを表として出力し、最後にページラベルを添える。
func (p *Printer) List(page *model.Page, lang model.Language) error {
	l := labelsFor(lang)

	if len(page.Items) == 0 {
		p.Notice("%s", l.noItems)
		p.Heading("%s", model.PageLabel(lang, page.PageNumber(), page.TotalPages()))
		return nil
	}

	table := NewTable(p.out, []string{l.number, l.name, l.group})
	for _, item := range page.Items {
		table.AddRow(strconv.Itoa(item.Nummer), item.DisplayName(), item.GroupLabel)
	}
	if err := table.Render(); err != nil {
		return err
	}

	p.Heading("%s", model.PageLabel(lang, page.PageNumber(), page.TotalPages()))
	return nil
}

// Detail は食品の見出し、主要栄養素サマリー、全栄養価の表を出力する。
func (p *Printer) Detail(item *model.FoodItem, nutrients []model.NutrientValue, lang model.Language) error {
	l := labelsFor(lang)

	p.Heading("%s (#%d)", item.DisplayName(), item.Nummer)
	if item.GroupLabel != "" {
		p.Notice("%s", item.GroupLabel)
	}

	summary := browse.MacroSummary(nutrients, lang)
	if len(summary) > 0 {
		p.Heading("%s", l.summary)
		table := NewTable(p.out, []string{l.name, l.value})
		for _, m := range summary {
			table.AddRow(m.Label, m.Format())
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(nutrients) == 0 {
		return nil
	}

	p.Heading("%s", l.details)
	table := NewTable(p.out, []string{l.name, l.value, l.unit, l.code})
	for _, nv := range nutrients {
		table.AddRow(nv.Name, strconv.FormatFloat(nv.Value, 'f', -1, 64), nv.Unit, nv.EuroFIRCode)
	}
	return table.Render()
}

// TopSearches は検索ログの集計結果を出力する。
func (p *Printer) TopSearches(counts []repository.SearchCount, lang model.Language) error {
	l := labelsFor(lang)

	table := NewTable(p.out, []string{l.search, l.language, l.count, l.lastSeen})
	for _, c := range counts {
		table.AddRow(c.Text, c.Language.String(), strconv.FormatInt(c.Count, 10), c.LastSeen.Local().Format(time.DateTime))
	}
	return table.Render()
}
