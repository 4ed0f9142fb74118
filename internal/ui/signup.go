package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// signupView collects the new-account form with field-level validation.
type signupView struct {
	inputs  []textinput.Model
	native  string // "en" or "fr"
	focus   int
	errs    []string
	pending bool
}

const (
	signupUsername = iota
	signupEmail
	signupPassword
	signupConfirm
)

func newSignupView() *signupView {
	mk := func(placeholder string, password bool) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		if password {
			in.EchoMode = textinput.EchoPassword
		}
		return in
	}
	v := &signupView{
		inputs: []textinput.Model{
			mk("username", false),
			mk("email", false),
			mk("password", true),
			mk("confirm password", true),
		},
		native: "en",
		errs:   make([]string, 4),
	}
	v.inputs[0].Focus()
	return v
}

func (v *signupView) inputFocused() bool { return true }

func (v *signupView) init(*App) tea.Cmd { return textinput.Blink }

func (v *signupView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			v.setFocus(v.focus + 1)
			return v, nil
		case "shift+tab", "up":
			v.setFocus(v.focus - 1)
			return v, nil
		case "ctrl+f":
			if v.native == "en" {
				v.native = "fr"
			} else {
				v.native = "en"
			}
			return v, nil
		case "enter":
			return v, v.submit(a)
		case "esc":
			return v, a.navigate("/")
		}
	case loginDoneMsg:
		v.pending = false
		if msg.err != nil {
			v.errs[signupUsername] = msg.err.Error()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return v, cmd
}

func (v *signupView) setFocus(i int) {
	v.inputs[v.focus].Blur()
	v.focus = (i + len(v.inputs)) % len(v.inputs)
	v.inputs[v.focus].Focus()
}

// validate populates per-field messages; a form with any message is never
// sent to the network.
func (v *signupView) validate(a *App) bool {
	v.errs = make([]string, 4)
	ok := true
	if strings.TrimSpace(v.inputs[signupUsername].Value()) == "" {
		v.errs[signupUsername] = tr(a.lang, "Username is required", "Nom d'utilisateur requis")
		ok = false
	}
	email := strings.TrimSpace(v.inputs[signupEmail].Value())
	if email == "" || !strings.Contains(email, "@") {
		v.errs[signupEmail] = tr(a.lang, "A valid email is required", "Un courriel valide est requis")
		ok = false
	}
	if len(v.inputs[signupPassword].Value()) < 8 {
		v.errs[signupPassword] = tr(a.lang, "Password must be at least 8 characters", "Le mot de passe doit contenir au moins 8 caractères")
		ok = false
	}
	if v.inputs[signupConfirm].Value() != v.inputs[signupPassword].Value() {
		v.errs[signupConfirm] = tr(a.lang, "Passwords do not match", "Les mots de passe ne correspondent pas")
		ok = false
	}
	return ok
}

func (v *signupView) submit(a *App) tea.Cmd {
	if v.pending || !v.validate(a) {
		return nil
	}
	v.pending = true
	username := strings.TrimSpace(v.inputs[signupUsername].Value())
	email := strings.TrimSpace(v.inputs[signupEmail].Value())
	password := v.inputs[signupPassword].Value()
	native := v.native
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		status, err := a.deps.API.Signup(ctx, username, email, password, native)
		return loginDoneMsg{status: status, err: err}
	}
}

func (v *signupView) render(a *App) string {
	labels := []string{
		tr(a.lang, "Username", "Nom d'utilisateur"),
		tr(a.lang, "Email", "Courriel"),
		tr(a.lang, "Password", "Mot de passe"),
		tr(a.lang, "Confirm password", "Confirmer le mot de passe"),
	}
	lines := []string{titleStyle.Render(tr(a.lang, "Create Account", "Créer un compte")), ""}
	for i, in := range v.inputs {
		lines = append(lines, labels[i], in.View())
		if v.errs[i] != "" {
			lines = append(lines, errorStyle.Render(v.errs[i]))
		}
	}
	nativeLabel := tr(a.lang, "Native language: ", "Langue maternelle : ")
	lines = append(lines, "", nativeLabel+okStyle.Render(v.native)+
		mutedStyle.Render(tr(a.lang, "  (ctrl+f to switch)", "  (ctrl+f pour changer)")))
	if v.pending {
		lines = append(lines, "", mutedStyle.Render(tr(a.lang, "Creating account...", "Création du compte...")))
	}
	lines = append(lines, "", helpStyle.Render(tr(a.lang,
		"Enter to submit, Tab to move, Esc to go back",
		"Entrée pour valider, Tab pour naviguer, Échap pour revenir")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
