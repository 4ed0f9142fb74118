package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// dashboardView is the signed-in landing page: recent conversations, region
// progress, and shortcuts to the main sections.
type dashboardView struct {
	conversations []models.ConversationEntry
	regions       []models.Region
	cursor        int
}

func newDashboardView() *dashboardView { return &dashboardView{} }

func (v *dashboardView) init(a *App) tea.Cmd {
	return tea.Batch(v.loadConversations(a), v.loadRegions(a))
}

func (v *dashboardView) loadConversations(a *App) tea.Cmd {
	return func() tea.Msg {
		entries, err := a.deps.Inbox.Conversations(a.bgCtx)
		return conversationsLoadedMsg{entries: entries, err: err}
	}
}

func (v *dashboardView) loadRegions(a *App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		regions, err := a.deps.API.Regions(ctx)
		return regionsLoadedMsg{regions: regions, err: err}
	}
}

func (v *dashboardView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case conversationsLoadedMsg:
		if msg.err == nil {
			v.conversations = msg.entries
		}
		return v, nil
	case regionsLoadedMsg:
		if msg.err == nil {
			v.regions = msg.regions
		}
		return v, nil
	case cacheUpdatedMsg:
		return v, v.loadConversations(a)
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.conversations)-1 {
				v.cursor++
			}
		case "enter":
			if v.cursor < len(v.conversations) {
				conv := v.conversations[v.cursor]
				return v, a.navigate(fmt.Sprintf("/messages/%d", conv.Conversation.ID))
			}
		case "m":
			return v, a.navigate("/matches")
		case "g":
			return v, a.navigate("/regions")
		case "p":
			return v, a.navigate("/profile")
		case "c":
			return v, a.navigate("/messages")
		}
	}
	return v, nil
}

func (v *dashboardView) render(a *App) string {
	greeting := tr(a.lang, "Welcome back", "Bon retour")
	if a.user != nil {
		greeting += ", " + a.user.Username
	}
	lines := []string{titleStyle.Render(greeting), ""}

	lines = append(lines, titleStyle.Render(tr(a.lang, "Recent Conversations", "Conversations récentes")))
	if len(v.conversations) == 0 {
		lines = append(lines, mutedStyle.Render(tr(a.lang,
			"No conversations yet. Find a partner under Matches.",
			"Pas encore de conversations. Trouvez un partenaire sous Correspondances.")))
	}
	for i, c := range v.conversations {
		row := c.OtherUser.Username
		if c.LastMessage != nil {
			row += mutedStyle.Render("  " + truncate(c.LastMessage.Content, 40))
		}
		if i == v.cursor {
			lines = append(lines, selectedItemStyle.Render("> "+row))
		} else {
			lines = append(lines, unselectedItemStyle.Render("  "+row))
		}
	}

	if len(v.regions) > 0 {
		lines = append(lines, "", titleStyle.Render(tr(a.lang, "Region Progress", "Progression des régions")))
		shown := v.regions
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for _, r := range shown {
			lines = append(lines, regionProgressLine(a.lang, r))
		}
	}

	lines = append(lines, "", helpStyle.Render(tr(a.lang,
		"[enter] open  [c] messages  [m] matches  [g] regions  [p] profile",
		"[entrée] ouvrir  [c] messages  [m] correspondances  [g] régions  [p] profil")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// truncate cuts on runes; byte slicing would split multibyte French text.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
