package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hitoshi/livsmedel/internal/model"
)

var (
	colorAccent = lipgloss.Color("39")
	colorMuted  = lipgloss.Color("243")
	colorError  = lipgloss.Color("196")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	fadedStyle    = lipgloss.NewStyle().Faint(true)
)

// 画面幅がこれ未満のときは一覧と詳細を縦に並べる
const sideBySideMinWidth = 80

// View は画面を描画する。
func (m Model) View() string {
	lang := m.view.Query.Language

	header := titleStyle.Render("Livsmedelsverket") + " " + mutedStyle.Render("["+lang.String()+"]")
	search := m.input.View()
	if m.view.SearchPending {
		search += " " + mutedStyle.Render("…")
	}

	list := m.renderList()
	detail := m.renderDetail()

	var body string
	if m.width >= sideBySideMinWidth {
		half := m.width/2 - 2
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			paneStyle.Width(half).Render(list),
			paneStyle.Width(half).Render(detail),
		)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			paneStyle.Render(list),
			paneStyle.Render(detail),
		)
	}

	help := mutedStyle.Render(helpText(lang))

	return lipgloss.JoinVertical(lipgloss.Left, header, search, body, help)
}

func (m Model) renderList() string {
	lv := m.view.List
	var b strings.Builder

	if model.LoadStatus(lv.Status).IsLoading() {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(titleStyle.Render(m.view.PageLabel()))
	b.WriteString("\n")

	if lv.Error != "" {
		b.WriteString(errorStyle.Render(lv.Error))
		b.WriteString("\n")
	}

	shown := m.view.Detail.Selected
	for i, item := range lv.Items {
		line := fmt.Sprintf("%6d  %s", item.Nummer, item.DisplayName())
		// 詳細パネルに表示中の食品
		if shown != nil && item.SameAs(*shown) {
			line += " " + mutedStyle.Render("●")
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderDetail() string {
	dv := m.view.Detail
	var b strings.Builder

	if dv.Selected == nil {
		return mutedStyle.Render(noSelectionText(m.view.Query.Language))
	}

	if model.LoadStatus(dv.Status).IsLoading() {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(titleStyle.Render(dv.Selected.DisplayName()))
	b.WriteString("\n")
	if dv.Selected.GroupLabel != "" {
		b.WriteString(mutedStyle.Render(dv.Selected.GroupLabel))
		b.WriteString("\n")
	}

	if dv.Error != "" {
		b.WriteString(errorStyle.Render(dv.Error))
		return b.String()
	}

	for _, macro := range dv.Summary {
		b.WriteString(fmt.Sprintf("%-24s %s\n", macro.Label, macro.Format()))
	}
	if len(dv.Nutrients) > 0 {
		b.WriteString(mutedStyle.Render(strconv.Itoa(len(dv.Nutrients)) + " " + nutrientCountText(m.view.Query.Language)))
	}

	out := strings.TrimRight(b.String(), "\n")
	if dv.Transitioning {
		return fadedStyle.Render(out)
	}
	return out
}

func helpText(lang model.Language) string {
	if lang == model.LanguageEnglish {
		return "↑/↓ move · enter select · ctrl+n/ctrl+p page · tab language · esc quit"
	}
	return "↑/↓ flytta · enter välj · ctrl+n/ctrl+p sida · tab språk · esc avsluta"
}

func noSelectionText(lang model.Language) string {
	if lang == model.LanguageEnglish {
		return "Select a food item to see its nutrients."
	}
	return "Välj ett livsmedel för att se näringsvärden."
}

func nutrientCountText(lang model.Language) string {
	if lang == model.LanguageEnglish {
		return "nutrient values"
	}
	return "näringsvärden"
}
