package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/livsmedel/internal/model"
	"github.com/hitoshi/livsmedel/internal/repository"
)

func samplePage() *model.Page {
	return &model.Page{
		Meta: model.Meta{TotalRecords: 45, Offset: 20, Limit: 20, Count: 2},
		Items: []model.FoodItem{
			{Nummer: 21, Name: "Mjölk fett 3%", GroupLabel: "Mjölk"},
			{Nummer: 22, Name: "Filmjölk", GroupLabel: "Fil och yoghurt"},
		},
	}
}

func TestResolveColors(t *testing.T) {
	t.Setenv("TERM", "xterm")

	if ResolveColors(true) {
		t.Error("--no-color指定時に色が有効になっている")
	}

	t.Setenv("NO_COLOR", "1")
	if ResolveColors(false) {
		t.Error("NO_COLOR設定時に色が有効になっている")
	}
}

func TestResolveColors_DumbTerminal(t *testing.T) {
	t.Setenv("TERM", "dumb")
	if ResolveColors(false) {
		t.Error("TERM=dumb で色が有効になっている")
	}
}

func TestPrinter_PlainOutputHasNoEscapeCodes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Heading("Sida %d", 1)
	p.Error("fel")

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("色なし出力にエスケープシーケンスが含まれている: %q", buf.String())
	}
	if buf.String() != "Sida 1\nfel\n" {
		t.Errorf("出力 = %q", buf.String())
	}
}

func TestPrinter_List(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	if err := p.List(samplePage(), model.LanguageSwedish); err != nil {
		t.Fatalf("List() がエラーを返した: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"NUMMER", "NAMN", "GRUPP", "21", "Mjölk fett 3%", "Filmjölk", "Sida 2 / 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("出力に %q が含まれていない:\n%s", want, out)
		}
	}
}

func TestPrinter_List_English(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	if err := p.List(samplePage(), model.LanguageEnglish); err != nil {
		t.Fatalf("List() がエラーを返した: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"NUMBER", "NAME", "Page 2 / 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("出力に %q が含まれていない:\n%s", want, out)
		}
	}
}

func TestPrinter_List_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	page := &model.Page{Meta: model.Meta{Limit: 20}}
	if err := p.List(page, model.LanguageSwedish); err != nil {
		t.Fatalf("List() がエラーを返した: %v", err)
	}

	if !strings.Contains(buf.String(), "Inga livsmedel hittades.") {
		t.Errorf("空のページで案内が出力されていない: %s", buf.String())
	}
}

func TestPrinter_Detail(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	item := &model.FoodItem{Nummer: 1, Name: "Mjölk fett 3%", GroupLabel: "Mjölk"}
	nutrients := []model.NutrientValue{
		{Name: "Energi (kcal)", EuroFIRCode: "ENERC", Value: 61, Unit: "kcal"},
		{Name: "Protein", EuroFIRCode: "PROT", Value: 3.4, Unit: "g"},
		{Name: "Natrium", EuroFIRCode: "NA", Value: 40, Unit: "mg"},
	}

	if err := p.Detail(item, nutrients, model.LanguageSwedish); err != nil {
		t.Fatalf("Detail() がエラーを返した: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Mjölk fett 3% (#1)", "Näringsinnehåll", "Energi", "61 kcal", "3.4 g", "Alla näringsvärden", "Natrium", "NA"} {
		if !strings.Contains(out, want) {
			t.Errorf("出力に %q が含まれていない:\n%s", want, out)
		}
	}
}

func TestPrinter_Detail_NoNutrients(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	if err := p.Detail(&model.FoodItem{Nummer: 9}, nil, model.LanguageEnglish); err != nil {
		t.Fatalf("Detail() がエラーを返した: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "#9") {
		t.Errorf("名前のない食品の見出しが出力されていない: %s", out)
	}
	if strings.Contains(out, "Nutrition summary") {
		t.Errorf("栄養価がないのにサマリーが出力された: %s", out)
	}
}

func TestPrinter_TopSearches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	counts := []repository.SearchCount{
		{Text: "mjölk", Language: model.LanguageSwedish, Count: 12, LastSeen: time.Now()},
	}
	if err := p.TopSearches(counts, model.LanguageSwedish); err != nil {
		t.Fatalf("TopSearches() がエラーを返した: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"SÖKNING", "mjölk", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("出力に %q が含まれていない:\n%s", want, out)
		}
	}
}
