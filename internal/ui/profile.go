package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// profileView edits the signed-in user's profile.
type profileView struct {
	inputs  []textinput.Model
	focus   int
	pending bool
	errMsg  string
	saved   bool
}

const (
	profileRegion = iota
	profileTarget
	profileBio
)

func newProfileView() *profileView {
	mk := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		return in
	}
	v := &profileView{
		inputs: []textinput.Model{
			mk("region"),
			mk("target language"),
			mk("bio"),
		},
	}
	v.inputs[0].Focus()
	return v
}

func (v *profileView) inputFocused() bool { return true }

func (v *profileView) init(a *App) tea.Cmd {
	if a.user != nil {
		v.inputs[profileRegion].SetValue(a.user.Region)
		v.inputs[profileTarget].SetValue(a.user.TargetLanguage)
		v.inputs[profileBio].SetValue(a.user.Bio)
	}
	return textinput.Blink
}

func (v *profileView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			v.setFocus(v.focus + 1)
			return v, nil
		case "shift+tab", "up":
			v.setFocus(v.focus - 1)
			return v, nil
		case "enter":
			return v, v.save(a)
		case "esc":
			return v, a.navigate("/dashboard")
		}
	case profileSavedMsg:
		v.pending = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		v.saved = true
		if msg.user != nil {
			a.user = msg.user
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return v, cmd
}

func (v *profileView) setFocus(i int) {
	v.inputs[v.focus].Blur()
	v.focus = (i + len(v.inputs)) % len(v.inputs)
	v.inputs[v.focus].Focus()
}

func (v *profileView) save(a *App) tea.Cmd {
	if v.pending || a.user == nil {
		return nil
	}
	v.pending = true
	v.saved = false
	v.errMsg = ""
	user := models.User{
		ID:             a.user.ID,
		Username:       a.user.Username,
		NativeLanguage: a.user.NativeLanguage,
		Region:         v.inputs[profileRegion].Value(),
		TargetLanguage: v.inputs[profileTarget].Value(),
		Bio:            v.inputs[profileBio].Value(),
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		updated, err := a.deps.API.UpdateProfile(ctx, user)
		return profileSavedMsg{user: updated, err: err}
	}
}

func (v *profileView) render(a *App) string {
	lines := []string{titleStyle.Render(tr(a.lang, "Your Profile", "Votre profil")), ""}
	if a.user != nil {
		lines = append(lines,
			mutedStyle.Render(tr(a.lang, "Username: ", "Nom d'utilisateur : ")+a.user.Username),
			mutedStyle.Render(tr(a.lang, "Native language: ", "Langue maternelle : ")+a.user.NativeLanguage),
			"")
	}
	labels := []string{
		tr(a.lang, "Region", "Région"),
		tr(a.lang, "Target language", "Langue cible"),
		tr(a.lang, "Bio", "Bio"),
	}
	for i, in := range v.inputs {
		lines = append(lines, labels[i], in.View())
	}
	if v.pending {
		lines = append(lines, "", mutedStyle.Render(tr(a.lang, "Saving...", "Sauvegarde...")))
	}
	if v.saved {
		lines = append(lines, "", okStyle.Render(tr(a.lang, "Profile saved", "Profil sauvegardé")))
	}
	if v.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(v.errMsg))
	}
	lines = append(lines, "", helpStyle.Render(tr(a.lang,
		"Enter to save, Esc to go back", "Entrée pour sauvegarder, Échap pour revenir")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
