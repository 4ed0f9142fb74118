package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// authView is the member login form, reused for the back-office login.
type authView struct {
	admin    bool
	username textinput.Model
	password textinput.Model
	focus    int
	errMsg   string
	pending  bool
}

func newAuthView(admin bool) *authView {
	user := textinput.New()
	user.Placeholder = "username"
	user.Focus()
	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	return &authView{admin: admin, username: user, password: pass}
}

func (v *authView) inputFocused() bool { return true }

func (v *authView) init(*App) tea.Cmd { return textinput.Blink }

func (v *authView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			v.cycleFocus(1)
			return v, nil
		case "shift+tab", "up":
			v.cycleFocus(-1)
			return v, nil
		case "enter":
			return v, v.submit(a)
		case "esc":
			return v, a.navigate("/")
		}
	case loginDoneMsg:
		v.pending = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		if msg.status == nil || !msg.status.Authenticated {
			v.errMsg = tr(a.lang, "Invalid credentials", "Identifiants invalides")
		}
		return v, nil
	case adminLoginDoneMsg:
		v.pending = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		if msg.status == nil || !msg.status.IsAdmin {
			v.errMsg = tr(a.lang, "Not an administrator", "Pas un administrateur")
		}
		return v, nil
	}

	var cmd tea.Cmd
	if v.focus == 0 {
		v.username, cmd = v.username.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *authView) cycleFocus(dir int) {
	v.focus = (v.focus + dir + 2) % 2
	if v.focus == 0 {
		v.username.Focus()
		v.password.Blur()
	} else {
		v.username.Blur()
		v.password.Focus()
	}
}

// submit validates locally; validation failures never reach the network.
func (v *authView) submit(a *App) tea.Cmd {
	if v.pending {
		return nil
	}
	username := strings.TrimSpace(v.username.Value())
	password := v.password.Value()
	if username == "" || password == "" {
		v.errMsg = tr(a.lang, "Username and password are required", "Nom d'utilisateur et mot de passe requis")
		return nil
	}
	v.errMsg = ""
	v.pending = true
	admin := v.admin
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		if admin {
			status, err := a.deps.API.AdminLogin(ctx, username, password)
			return adminLoginDoneMsg{status: status, err: err}
		}
		status, err := a.deps.API.Login(ctx, username, password)
		return loginDoneMsg{status: status, err: err}
	}
}

func (v *authView) render(a *App) string {
	title := tr(a.lang, "Sign In", "Connexion")
	if v.admin {
		title = tr(a.lang, "Admin Sign In", "Connexion administrateur")
	}
	lines := []string{
		titleStyle.Render(title),
		"",
		v.username.View(),
		v.password.View(),
	}
	if v.pending {
		lines = append(lines, "", mutedStyle.Render(tr(a.lang, "Signing in...", "Connexion...")))
	}
	if v.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(v.errMsg))
	}
	if !v.admin {
		lines = append(lines, "", helpStyle.Render(tr(a.lang,
			"Enter to submit, Esc to go back. New here? Visit /signup.",
			"Entrée pour valider, Échap pour revenir. Nouveau ? Visitez /signup.")))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
