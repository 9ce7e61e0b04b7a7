package browse

import (
	"testing"

	"github.com/hitoshi/livsmedel/internal/model"
)

func TestMacroSummary_OrderAndLabels(t *testing.T) {
	summary := MacroSummary(sampleNutrients(), model.LanguageSwedish)

	want := []struct {
		code  string
		label string
	}{
		{CodeEnergy, "Energi"},
		{CodeProtein, "Protein"},
		{CodeFat, "Fett"},
		{CodeCarbohydrate, "Kolhydrater"},
	}
	if len(summary) != len(want) {
		t.Fatalf("件数 = %d, want %d: %+v", len(summary), len(want), summary)
	}
	for i, w := range want {
		if summary[i].Code != w.code || summary[i].Label != w.label {
			t.Errorf("summary[%d] = %s/%s, want %s/%s", i, summary[i].Code, summary[i].Label, w.code, w.label)
		}
	}
}

func TestMacroSummary_EnglishLabels(t *testing.T) {
	summary := MacroSummary(sampleNutrients(), model.LanguageEnglish)

	if summary[0].Label != "Energy" {
		t.Errorf("Label = %q, want Energy", summary[0].Label)
	}
	if summary[3].Label != "Carbohydrates" {
		t.Errorf("Label = %q, want Carbohydrates", summary[3].Label)
	}
}

func TestMacroSummary_ExactCodeMatch(t *testing.T) {
	nutrients := []model.NutrientValue{
		{EuroFIRCode: "ENERC_KJ", Value: 1046, Unit: "kJ"},
		{EuroFIRCode: "FIBT", Value: 2.1, Unit: "g"},
	}

	summary := MacroSummary(nutrients, model.LanguageSwedish)

	if len(summary) != 1 {
		t.Fatalf("件数 = %d, want 1: %+v", len(summary), summary)
	}
	if summary[0].Code != CodeFiber {
		t.Errorf("Code = %q, want FIBT", summary[0].Code)
	}
}

func TestMacroSummary_DefaultUnit(t *testing.T) {
	nutrients := []model.NutrientValue{
		{EuroFIRCode: "ENERC", Value: 250},
		{EuroFIRCode: "PROT", Value: 3},
	}

	summary := MacroSummary(nutrients, model.LanguageSwedish)

	if summary[0].Unit != "kcal" {
		t.Errorf("エネルギーの既定単位 = %q, want kcal", summary[0].Unit)
	}
	if summary[1].Unit != "g" {
		t.Errorf("タンパク質の既定単位 = %q, want g", summary[1].Unit)
	}
}

func TestMacroSummary_Empty(t *testing.T) {
	if got := MacroSummary(nil, model.LanguageSwedish); len(got) != 0 {
		t.Errorf("空の入力で%d件返した", len(got))
	}
}

func TestMacroNutrient_Format(t *testing.T) {
	tests := []struct {
		m    MacroNutrient
		want string
	}{
		{MacroNutrient{Value: 250, Unit: "kcal"}, "250 kcal"},
		{MacroNutrient{Value: 3.4, Unit: "g"}, "3.4 g"},
		{MacroNutrient{Value: 0, Unit: "g"}, "0 g"},
	}
	for _, tt := range tests {
		if got := tt.m.Format(); got != tt.want {
			t.Errorf("Format() = %q, want %q", got, tt.want)
		}
	}
}
