package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bilingua-nb/bilingua-client/internal/guard"
)

func (a *App) buildView(m guard.Match) pageView {
	switch m.View {
	case guard.ViewHome, guard.ViewFeatures, guard.ViewPrivacy, guard.ViewNotFound:
		return newStaticView(m.View)
	case guard.ViewLegal:
		v := newStaticView(m.View)
		v.tab = m.Params["tab"]
		return v
	case guard.ViewAuth:
		return newAuthView(false)
	case guard.ViewAdminLogin:
		return newAuthView(true)
	case guard.ViewSignup:
		return newSignupView()
	case guard.ViewOnboarding:
		return newQuizView()
	case guard.ViewDashboard:
		return newDashboardView()
	case guard.ViewMatches:
		return newMatchesView()
	case guard.ViewMessages:
		return newMessagesView(m.Params["id"])
	case guard.ViewRegions:
		return newRegionsView()
	case guard.ViewRegionDetail:
		return newRegionDetailView(m.Params["id"])
	case guard.ViewProfile:
		return newProfileView()
	case guard.ViewAdmin, guard.ViewAdminUsers, guard.ViewAdminRegions,
		guard.ViewAdminAnalytics, guard.ViewAdminVerifications,
		guard.ViewAdminSettings, guard.ViewAdminSecurity,
		guard.ViewAdminModeration, guard.ViewAdminSuper:
		return newAdminView(m.View)
	case guard.ViewDevTools:
		return newDevToolsView()
	}
	return nil
}

// staticView renders informational pages that need no data loading.
type staticView struct {
	kind guard.View
	tab  string
}

func newStaticView(kind guard.View) *staticView {
	return &staticView{kind: kind}
}

func (v *staticView) init(*App) tea.Cmd { return nil }

func (v *staticView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			switch v.kind {
			case guard.ViewHome:
				if a.authed {
					return v, a.navigate("/dashboard")
				}
				return v, a.navigate("/auth")
			case guard.ViewNotFound:
				return v, a.navigate("/")
			}
		case "t":
			if v.kind == guard.ViewLegal {
				// Cycle legal tabs: terms, privacy, safety.
				switch v.tab {
				case "terms":
					v.tab = "privacy"
				case "privacy":
					v.tab = "safety"
				default:
					v.tab = "terms"
				}
			}
		}
	}
	return v, nil
}

func (v *staticView) render(a *App) string {
	switch v.kind {
	case guard.ViewHome:
		body := tr(a.lang,
			"Bilingua NB\n\nA language exchange connecting English and French speakers in New Brunswick.\n\nPress Enter to get started.",
			"Bilingua NB\n\nUn échange linguistique qui relie les anglophones et les francophones du Nouveau-Brunswick.\n\nAppuyez sur Entrée pour commencer.")
		return boxStyle.Render(body)
	case guard.ViewFeatures:
		return boxStyle.Render(tr(a.lang,
			"Features\n\n- Matching with native speakers\n- Real-time messaging with translation\n- Region unlock challenges\n- In-person meetup proposals",
			"Fonctionnalités\n\n- Jumelage avec des locuteurs natifs\n- Messagerie en temps réel avec traduction\n- Défis de déblocage de régions\n- Propositions de rencontres en personne"))
	case guard.ViewLegal:
		title := tr(a.lang, "Legal", "Mentions légales")
		tab := v.tab
		if tab == "" {
			tab = "terms"
		}
		return boxStyle.Render(title + "\n\n" +
			mutedStyle.Render(tr(a.lang, "Section: ", "Section : ")+tab) + "\n" +
			helpStyle.Render(tr(a.lang, "[t] switch section", "[t] changer de section")))
	case guard.ViewPrivacy:
		return boxStyle.Render(tr(a.lang,
			"Privacy Policy\n\nYour messages are only shared with your conversation partner. Translations are processed by the platform's translation service.",
			"Politique de confidentialité\n\nVos messages ne sont partagés qu'avec votre partenaire de conversation. Les traductions sont traitées par le service de traduction de la plateforme."))
	default:
		return boxStyle.BorderForeground(errorColor).Render(tr(a.lang,
			"404 Page Not Found\n\nThe page you're looking for doesn't exist.\n\nPress Enter to go home.",
			"404 Page non trouvée\n\nLa page que vous recherchez n'existe pas.\n\nAppuyez sur Entrée pour revenir à l'accueil."))
	}
}
