package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bilingua-nb/bilingua-client/internal/guard"
	"github.com/bilingua-nb/bilingua-client/internal/inbox"
)

// adminView renders the back-office sections. One view type covers all of
// them; kind selects the data load and the rendering.
type adminView struct {
	kind    guard.View
	data    adminDataMsg
	cursor  int
	loading bool
	errMsg  string
}

func newAdminView(kind guard.View) *adminView {
	return &adminView{kind: kind, loading: true}
}

func (v *adminView) init(a *App) tea.Cmd {
	kind := v.kind
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		return loadAdminData(ctx, a, kind)
	}
}

func loadAdminData(ctx context.Context, a *App, kind guard.View) adminDataMsg {
	var out adminDataMsg
	var err error
	switch kind {
	case guard.ViewAdmin, guard.ViewAdminAnalytics:
		out.analytics, err = a.deps.API.AdminAnalytics(ctx)
	case guard.ViewAdminUsers:
		out.users, err = a.deps.API.AdminUsers(ctx)
	case guard.ViewAdminRegions:
		out.regions, err = a.deps.API.AdminRegions(ctx)
	case guard.ViewAdminVerifications:
		out.verifications, err = a.deps.API.Verifications(ctx)
	case guard.ViewAdminSettings:
		out.settings, err = a.deps.API.Settings(ctx)
	case guard.ViewAdminSecurity:
		out.events, err = a.deps.API.SecurityEvents(ctx)
	case guard.ViewAdminModeration:
		out.reports, err = a.deps.API.Reports(ctx)
	case guard.ViewAdminSuper:
		out.settings, err = a.deps.API.Settings(ctx)
		if err == nil {
			out.events, err = a.deps.API.SecurityEvents(ctx)
		}
	}
	out.err = err
	return out
}

func (v *adminView) rowCount() int {
	switch v.kind {
	case guard.ViewAdminUsers:
		return len(v.data.users)
	case guard.ViewAdminRegions:
		return len(v.data.regions)
	case guard.ViewAdminVerifications:
		return len(v.data.verifications)
	case guard.ViewAdminSecurity:
		return len(v.data.events)
	case guard.ViewAdminModeration:
		return len(v.data.reports)
	}
	return 0
}

func (v *adminView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case adminDataMsg:
		v.loading = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			a.deps.Recorder.Record("admin data load", msg.err)
			return v, nil
		}
		v.data = msg
		if v.cursor >= v.rowCount() {
			v.cursor = 0
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < v.rowCount()-1 {
				v.cursor++
			}
		case "r":
			v.loading = true
			v.errMsg = ""
			return v, v.init(a)
		case "esc":
			if v.kind != guard.ViewAdmin {
				return v, a.navigate("/admin")
			}
		case "1", "2", "3", "4", "5", "6", "7", "8":
			return v, v.sectionShortcut(a, msg.String())
		default:
			return v, v.action(a, msg.String())
		}
	}
	return v, nil
}

func (v *adminView) sectionShortcut(a *App, key string) tea.Cmd {
	paths := map[string]string{
		"1": "/admin/users",
		"2": "/admin/regions",
		"3": "/admin/analytics",
		"4": "/admin/verifications",
		"5": "/admin/settings",
		"6": "/admin/security",
		"7": "/admin/moderation",
		"8": "/admin/super",
	}
	return a.navigate(paths[key])
}

// action handles kind-specific row operations.
func (v *adminView) action(a *App, key string) tea.Cmd {
	switch v.kind {
	case guard.ViewAdminUsers:
		if key == "s" && v.cursor < len(v.data.users) {
			u := v.data.users[v.cursor]
			return v.mutate(a, func(ctx context.Context) error {
				return a.deps.API.SuspendUser(ctx, u.ID, !u.Suspended)
			})
		}
	case guard.ViewAdminVerifications:
		if v.cursor < len(v.data.verifications) {
			ver := v.data.verifications[v.cursor]
			switch key {
			case "a":
				return v.mutate(a, func(ctx context.Context) error {
					return a.deps.API.ResolveVerification(ctx, ver.ID, "approved")
				})
			case "d":
				return v.mutate(a, func(ctx context.Context) error {
					return a.deps.API.ResolveVerification(ctx, ver.ID, "rejected")
				})
			}
		}
	case guard.ViewAdminModeration:
		if v.cursor < len(v.data.reports) {
			rep := v.data.reports[v.cursor]
			switch key {
			case "a":
				return v.mutate(a, func(ctx context.Context) error {
					return a.deps.API.ResolveReport(ctx, rep.ID, "resolved")
				})
			case "d":
				return v.mutate(a, func(ctx context.Context) error {
					return a.deps.API.ResolveReport(ctx, rep.ID, "dismissed")
				})
			}
		}
	case guard.ViewAdminSettings, guard.ViewAdminSuper:
		if v.data.settings != nil {
			s := *v.data.settings
			switch key {
			case "s":
				s.SignupsEnabled = !s.SignupsEnabled
			case "m":
				s.MaintenanceMode = !s.MaintenanceMode
			default:
				return nil
			}
			return v.mutate(a, func(ctx context.Context) error {
				return a.deps.API.UpdateSettings(ctx, s)
			})
		}
	}
	return nil
}

// mutate performs a write then reloads the section.
func (v *adminView) mutate(a *App, fn func(context.Context) error) tea.Cmd {
	kind := v.kind
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.Notify(inbox.Notice{Title: "Admin Error", Body: err.Error(), Error: true})
			return nil
		}
		return loadAdminData(ctx, a, kind)
	}
}

func (v *adminView) render(a *App) string {
	title := map[guard.View]string{
		guard.ViewAdmin:              tr(a.lang, "Admin Dashboard", "Tableau de bord admin"),
		guard.ViewAdminUsers:         tr(a.lang, "Users", "Utilisateurs"),
		guard.ViewAdminRegions:       tr(a.lang, "Regions", "Régions"),
		guard.ViewAdminAnalytics:     tr(a.lang, "Analytics", "Analytique"),
		guard.ViewAdminVerifications: tr(a.lang, "Verifications", "Vérifications"),
		guard.ViewAdminSettings:      tr(a.lang, "Settings", "Paramètres"),
		guard.ViewAdminSecurity:      tr(a.lang, "Security Events", "Événements de sécurité"),
		guard.ViewAdminModeration:    tr(a.lang, "Moderation", "Modération"),
		guard.ViewAdminSuper:         tr(a.lang, "Super Admin", "Super administrateur"),
	}[v.kind]

	lines := []string{titleStyle.Render(title), ""}
	switch {
	case v.loading:
		lines = append(lines, mutedStyle.Render(tr(a.lang, "Loading...", "Chargement...")))
	case v.errMsg != "":
		lines = append(lines, errorStyle.Render(v.errMsg),
			helpStyle.Render(tr(a.lang, "[r] retry", "[r] réessayer")))
	default:
		lines = append(lines, v.renderBody(a)...)
	}

	lines = append(lines, "", helpStyle.Render(tr(a.lang,
		"[1] users [2] regions [3] analytics [4] verifications [5] settings [6] security [7] moderation [8] super",
		"[1] utilisateurs [2] régions [3] analytique [4] vérifications [5] paramètres [6] sécurité [7] modération [8] super")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *adminView) renderBody(a *App) []string {
	var lines []string
	mark := func(i int, row string) string {
		if i == v.cursor {
			return selectedItemStyle.Render("> " + row)
		}
		return unselectedItemStyle.Render("  " + row)
	}

	switch v.kind {
	case guard.ViewAdmin, guard.ViewAdminAnalytics:
		s := v.data.analytics
		if s == nil {
			lines = append(lines, mutedStyle.Render(tr(a.lang, "no data", "aucune donnée")))
			break
		}
		lines = append(lines,
			fmt.Sprintf("%s: %d", tr(a.lang, "Total users", "Utilisateurs au total"), s.TotalUsers),
			fmt.Sprintf("%s: %d", tr(a.lang, "Active users", "Utilisateurs actifs"), s.ActiveUsers),
			fmt.Sprintf("%s: %d", tr(a.lang, "Messages today", "Messages aujourd'hui"), s.MessagesToday),
			fmt.Sprintf("%s: %d", tr(a.lang, "Unlocked regions", "Régions débloquées"), s.UnlockedRegions),
			fmt.Sprintf("%s: %d", tr(a.lang, "Pending reports", "Signalements en attente"), s.PendingReports),
			fmt.Sprintf("%s: %d", tr(a.lang, "Pending verifications", "Vérifications en attente"), s.PendingVerification),
		)

	case guard.ViewAdminUsers:
		for i, u := range v.data.users {
			row := fmt.Sprintf("%-16s %-8s %s", u.Username, u.Language, u.Region)
			if u.Suspended {
				row += "  " + errorStyle.Render(tr(a.lang, "suspended", "suspendu"))
			}
			lines = append(lines, mark(i, row))
		}
		lines = append(lines, "", helpStyle.Render(tr(a.lang, "[s] toggle suspension", "[s] basculer la suspension")))

	case guard.ViewAdminRegions:
		for i, r := range v.data.regions {
			lines = append(lines, mark(i, regionProgressLine(a.lang, r)))
		}

	case guard.ViewAdminVerifications:
		for i, ver := range v.data.verifications {
			row := fmt.Sprintf("%-16s %-10s %s", ver.Username, ver.Status, ver.SubmittedAt.Format("2006-01-02"))
			lines = append(lines, mark(i, row))
		}
		lines = append(lines, "", helpStyle.Render(tr(a.lang, "[a] approve  [d] reject", "[a] approuver  [d] rejeter")))

	case guard.ViewAdminSettings, guard.ViewAdminSuper:
		s := v.data.settings
		if s == nil {
			lines = append(lines, mutedStyle.Render(tr(a.lang, "no settings", "aucun paramètre")))
			break
		}
		onOff := func(b bool) string {
			if b {
				return okStyle.Render("on")
			}
			return mutedStyle.Render("off")
		}
		lines = append(lines,
			tr(a.lang, "Signups enabled: ", "Inscriptions activées : ")+onOff(s.SignupsEnabled),
			tr(a.lang, "Maintenance mode: ", "Mode maintenance : ")+onOff(s.MaintenanceMode),
			tr(a.lang, "Default language: ", "Langue par défaut : ")+s.DefaultLanguage,
			fmt.Sprintf("%s: %d", tr(a.lang, "Max message length", "Longueur max des messages"), s.MaxMessageLength),
			tr(a.lang, "Translation provider: ", "Fournisseur de traduction : ")+s.TranslationProvider,
			"",
			helpStyle.Render(tr(a.lang, "[s] toggle signups  [m] toggle maintenance", "[s] basculer inscriptions  [m] basculer maintenance")),
		)
		if v.kind == guard.ViewAdminSuper {
			lines = append(lines, "", titleStyle.Render(tr(a.lang, "Recent security events", "Événements de sécurité récents")))
			for _, e := range v.data.events {
				lines = append(lines, mutedStyle.Render(e.CreatedAt.Format("01-02 15:04")+" "+e.Kind+" "+e.Detail))
			}
		}

	case guard.ViewAdminSecurity:
		for i, e := range v.data.events {
			row := fmt.Sprintf("%s  %-12s %-16s %s", e.CreatedAt.Format("01-02 15:04"), e.Kind, e.Actor, e.Detail)
			lines = append(lines, mark(i, row))
		}

	case guard.ViewAdminModeration:
		for i, rep := range v.data.reports {
			row := fmt.Sprintf("#%d msg %d  %-10s %s", rep.ID, rep.MessageID, rep.Status, rep.Reason)
			lines = append(lines, mark(i, row))
		}
		lines = append(lines, "", helpStyle.Render(tr(a.lang, "[a] resolve  [d] dismiss", "[a] résoudre  [d] rejeter")))
	}

	if len(lines) == 0 {
		lines = append(lines, mutedStyle.Render(tr(a.lang, "nothing here", "rien ici")))
	}
	return lines
}
