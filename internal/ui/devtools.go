package ui

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bilingua-nb/bilingua-client/internal/cache"
	"github.com/bilingua-nb/bilingua-client/internal/storage"
)

// devToolsMsg carries a diagnostics snapshot for the dev-tools page.
type devToolsMsg struct {
	diags []storage.Diagnostic
	stats map[string]cache.KeyStats
	err   error
}

// devToolsView shows the diagnostic ring buffer and cache key states. It is
// routed only in dev mode.
type devToolsView struct {
	diags  []storage.Diagnostic
	stats  map[string]cache.KeyStats
	errMsg string
}

func newDevToolsView() *devToolsView { return &devToolsView{} }

func (v *devToolsView) init(a *App) tea.Cmd { return v.load(a) }

func (v *devToolsView) load(a *App) tea.Cmd {
	return func() tea.Msg {
		var msg devToolsMsg
		msg.stats = a.deps.Store.Stats()
		if a.deps.DB != nil {
			msg.diags, msg.err = a.deps.DB.Diagnostics()
		}
		return msg
	}
}

func (v *devToolsView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case devToolsMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
		}
		v.diags = msg.diags
		v.stats = msg.stats
		return v, nil
	case cacheUpdatedMsg:
		return v, v.load(a)
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return v, v.load(a)
		case "c":
			if a.deps.DB != nil {
				a.deps.DB.ClearDiagnostics()
			}
			return v, v.load(a)
		case "esc":
			return v, a.navigate("/")
		}
	}
	return v, nil
}

func (v *devToolsView) render(a *App) string {
	lines := []string{titleStyle.Render("Dev Tools"), ""}
	if v.errMsg != "" {
		lines = append(lines, errorStyle.Render(v.errMsg), "")
	}

	lines = append(lines, titleStyle.Render(fmt.Sprintf("Diagnostics (%d)", len(v.diags))))
	if len(v.diags) == 0 {
		lines = append(lines, mutedStyle.Render("no recorded failures this session"))
	}
	for _, d := range v.diags {
		row := fmt.Sprintf("%s  %-12s %s", d.At.Format("15:04:05"), d.Kind, d.Message)
		if d.Detail != "" {
			row += mutedStyle.Render("  " + d.Detail)
		}
		style := warnStyle
		if d.Kind == "connectivity" {
			style = errorStyle
		}
		lines = append(lines, style.Render(row))
	}

	lines = append(lines, "", titleStyle.Render("Cache Keys"))
	keys := make([]string, 0, len(v.stats))
	for k := range v.stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		st := v.stats[k]
		row := fmt.Sprintf("%-40s rev %d", k, st.Revision)
		if st.HasValue {
			row += okStyle.Render("  cached")
		} else {
			row += mutedStyle.Render("  empty")
		}
		if !st.LastFetchAt.IsZero() {
			row += mutedStyle.Render("  " + st.LastFetchAt.Format("15:04:05"))
		}
		if st.LastError != "" {
			row += errorStyle.Render("  " + st.LastError)
		}
		lines = append(lines, row)
	}
	if len(keys) == 0 {
		lines = append(lines, mutedStyle.Render("no registered keys"))
	}

	lines = append(lines, "", helpStyle.Render("[r] refresh  [c] clear diagnostics  [esc] back"))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
