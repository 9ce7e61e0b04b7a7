// Package tui は閲覧セッションを操作する端末UI（browseコマンド）を提供する。
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hitoshi/livsmedel/internal/browse"
	"github.com/hitoshi/livsmedel/internal/model"
)

// Browser はTUIから操作する閲覧セッション。*browse.Session が満たす。
type Browser interface {
	InputSearch(text string)
	NextPage() bool
	PrevPage() bool
	SetLanguage(lang model.Language) error
	Language() model.Language
	Select(item model.FoodItem)
	View() browse.View
	SetOnChange(f func())
}

// sessionChangedMsg はセッションの状態が変わったことを通知する。
type sessionChangedMsg struct{}

// Model はbubbleteaのモデル。
type Model struct {
	session Browser
	changes chan struct{}

	input   textinput.Model
	spinner spinner.Model

	view   browse.View
	cursor int
	width  int
	height int
}

// New はセッションを操作するModelを生成する。
// セッションの変更通知はチャネル経由でteaメッセージとして届く。
func New(session Browser) Model {
	ti := textinput.New()
	ti.Placeholder = "Sök livsmedel..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "> "
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	changes := make(chan struct{}, 1)
	session.SetOnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		session: session,
		changes: changes,
		input:   ti,
		spinner: s,
		view:    session.View(),
	}
}

// Init は入力カーソルの点滅、スピナー、変更通知の待機を開始する。
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return sessionChangedMsg{}
	}
}

// Update はメッセージに応じて状態を更新する。
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width/2-6, 10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down":
		if m.cursor < len(m.view.List.Items)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if m.cursor < len(m.view.List.Items) {
			m.session.Select(m.view.List.Items[m.cursor])
			m.refresh()
		}
		return m, nil

	case "ctrl+n", "pgdown":
		if m.session.NextPage() {
			m.cursor = 0
		}
		m.refresh()
		return m, nil

	case "ctrl+p", "pgup":
		if m.session.PrevPage() {
			m.cursor = 0
		}
		m.refresh()
		return m, nil

	case "tab":
		// Toggleは常に有効な言語を返す
		_ = m.session.SetLanguage(m.session.Language().Toggle())
		m.refresh()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.session.InputSearch(after)
		m.refresh()
	}
	return m, cmd
}

// refresh はセッションのスナップショットを取り直し、カーソルを範囲内に収める。
// 検索語かページが変わって一覧の中身が入れ替わった場合は先頭に戻す。
func (m *Model) refresh() {
	prev := m.view.Query
	m.view = m.session.View()
	if q := m.view.Query; q.Search != prev.Search || q.Offset != prev.Offset {
		m.cursor = 0
	}
	if n := len(m.view.List.Items); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}
