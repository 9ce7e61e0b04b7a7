package browse

import (
	"strconv"

	"github.com/hitoshi/livsmedel/internal/model"
)

// EuroFIRコード。主要栄養素サマリーの検索キー。
const (
	CodeEnergy       = "ENERC"
	CodeProtein      = "PROT"
	CodeFat          = "FAT"
	CodeCarbohydrate = "CHO"
	CodeFiber        = "FIBT"
)

// MacroNutrient は主要栄養素サマリーの1枠。
type MacroNutrient struct {
	Code  string  `json:"code"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Format は "250 kcal" 形式の表示文字列を返す。
func (m MacroNutrient) Format() string {
	return strconv.FormatFloat(m.Value, 'f', -1, 64) + " " + m.Unit
}

type macroSlot struct {
	code        string
	labelSv     string
	labelEn     string
	defaultUnit string
}

var macroSlots = []macroSlot{
	{CodeEnergy, "Energi", "Energy", "kcal"},
	{CodeProtein, "Protein", "Protein", "g"},
	{CodeFat, "Fett", "Fat", "g"},
	{CodeCarbohydrate, "Kolhydrater", "Carbohydrates", "g"},
	{CodeFiber, "Fiber", "Fiber", "g"},
}

// MacroSummary は栄養価一覧から主要栄養素を完全一致のコードで抽出する。
// 見つからないコードの枠は省略する。単位が無い場合は既定の単位を使う。
func MacroSummary(nutrients []model.NutrientValue, lang model.Language) []MacroNutrient {
	var summary []MacroNutrient
	for _, slot := range macroSlots {
		nv, ok := findNutrient(nutrients, slot.code)
		if !ok {
			continue
		}
		label := slot.labelSv
		if lang == model.LanguageEnglish {
			label = slot.labelEn
		}
		unit := nv.Unit
		if unit == "" {
			unit = slot.defaultUnit
		}
		summary = append(summary, MacroNutrient{
			Code:  slot.code,
			Label: label,
			Value: nv.Value,
			Unit:  unit,
		})
	}
	return summary
}

func findNutrient(nutrients []model.NutrientValue, code string) (model.NutrientValue, bool) {
	for _, nv := range nutrients {
		if nv.EuroFIRCode == code {
			return nv, true
		}
	}
	return model.NutrientValue{}, false
}
