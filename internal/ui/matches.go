package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// matchesView lists suggested language-exchange partners.
type matchesView struct {
	matches []models.Match
	cursor  int
	loading bool
	errMsg  string
}

func newMatchesView() *matchesView { return &matchesView{loading: true} }

func (v *matchesView) init(a *App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		matches, err := a.deps.API.Matches(ctx)
		return matchesLoadedMsg{matches: matches, err: err}
	}
}

func (v *matchesView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case matchesLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			a.deps.Recorder.Record("load matches", msg.err)
			return v, nil
		}
		v.matches = msg.matches
		return v, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.matches)-1 {
				v.cursor++
			}
		case "enter":
			if v.cursor < len(v.matches) {
				m := v.matches[v.cursor]
				if m.ConversationID != 0 {
					return v, a.navigate(fmt.Sprintf("/messages/%d", m.ConversationID))
				}
				// No thread yet; select by user so the first send creates one.
				a.deps.Inbox.Select(a.bgCtx, m.User.ID)
				return v, a.navigate("/messages")
			}
		case "r":
			v.loading = true
			v.errMsg = ""
			return v, v.init(a)
		}
	}
	return v, nil
}

func (v *matchesView) render(a *App) string {
	lines := []string{titleStyle.Render(tr(a.lang, "Your Matches", "Vos correspondances")), ""}
	switch {
	case v.loading:
		lines = append(lines, mutedStyle.Render(tr(a.lang, "Finding partners...", "Recherche de partenaires...")))
	case v.errMsg != "":
		lines = append(lines, errorStyle.Render(v.errMsg),
			helpStyle.Render(tr(a.lang, "[r] retry", "[r] réessayer")))
	case len(v.matches) == 0:
		lines = append(lines, mutedStyle.Render(tr(a.lang,
			"No matches yet. Complete the quiz to improve your suggestions.",
			"Pas encore de correspondances. Complétez le quiz pour améliorer vos suggestions.")))
	default:
		for i, m := range v.matches {
			row := m.User.Username
			if m.SharedRegion != "" {
				row += mutedStyle.Render("  " + m.SharedRegion)
			}
			if m.Compatibility > 0 {
				row += okStyle.Render(fmt.Sprintf("  %d%%", m.Compatibility))
			}
			if i == v.cursor {
				lines = append(lines, selectedItemStyle.Render("> "+row))
			} else {
				lines = append(lines, unselectedItemStyle.Render("  "+row))
			}
		}
	}
	lines = append(lines, "", helpStyle.Render(tr(a.lang,
		"[enter] message partner", "[entrée] écrire au partenaire")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
