package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// quizField is one selectable question in the onboarding wizard.
type quizField struct {
	labelEN string
	labelFR string
	options []string
	value   *string
}

// quizStep groups the fields shown on one wizard page.
type quizStep struct {
	titleEN string
	titleFR string
	fields  []quizField
}

// quizView is the four-step onboarding wizard. Selections start from the
// defaults and are only posted on the final step.
type quizView struct {
	answers models.QuizAnswers
	steps   []quizStep
	step    int
	field   int
	pending bool
	errMsg  string
	done    bool
}

func newQuizView() *quizView {
	v := &quizView{answers: models.DefaultQuizAnswers()}
	a := &v.answers
	v.steps = []quizStep{
		{
			titleEN: "Language Proficiency",
			titleFR: "Compétence linguistique",
			fields: []quizField{
				{"Proficiency level", "Niveau de compétence",
					[]string{"beginner", "intermediate", "advanced"}, &a.ProficiencyLevel},
				{"Speaking confidence", "Confiance à l'oral",
					[]string{"low", "moderate", "high"}, &a.SpeakingConfidence},
			},
		},
		{
			titleEN: "Writing & Reading Skills",
			titleFR: "Compétences en écriture et lecture",
			fields: []quizField{
				{"Writing level", "Niveau d'écriture",
					[]string{"beginner", "intermediate", "advanced"}, &a.WritingLevel},
				{"Reading level", "Niveau de lecture",
					[]string{"beginner", "intermediate", "advanced"}, &a.ReadingLevel},
			},
		},
		{
			titleEN: "Learning Preferences",
			titleFR: "Préférences d'apprentissage",
			fields: []quizField{
				{"Learning style", "Style d'apprentissage",
					[]string{"visual", "auditory", "conversational", "reading"}, &a.LearningStyle},
				{"Practice frequency", "Fréquence de pratique",
					[]string{"daily", "weekly", "occasionally"}, &a.PracticeFrequency},
			},
		},
		{
			titleEN: "Location & Availability",
			titleFR: "Lieu et disponibilité",
			fields: []quizField{
				{"Preferred location", "Lieu préféré",
					[]string{"fredericton", "moncton", "saint-john", "virtual"}, &a.PreferredLocation},
				{"Available time", "Disponibilité",
					[]string{"morning", "afternoon", "evening", "weekend"}, &a.AvailableTime},
			},
		},
	}
	return v
}

func (v *quizView) init(*App) tea.Cmd { return nil }

func (v *quizView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.done {
			if msg.String() == "enter" {
				if a.authed {
					return v, a.navigate("/matches")
				}
				return v, a.navigate("/auth")
			}
			return v, nil
		}
		switch msg.String() {
		case "up", "k":
			if v.field > 0 {
				v.field--
			}
		case "down", "j":
			if v.field < len(v.steps[v.step].fields)-1 {
				v.field++
			}
		case "left", "h":
			v.cycle(-1)
		case "right", "l":
			v.cycle(1)
		case "enter":
			if v.step < len(v.steps)-1 {
				v.step++
				v.field = 0
				return v, nil
			}
			return v, v.submit(a)
		case "backspace":
			if v.step > 0 {
				v.step--
				v.field = 0
			}
		case "esc":
			return v, a.navigate("/")
		}
	case quizDoneMsg:
		v.pending = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		v.done = true
		return v, nil
	}
	return v, nil
}

func (v *quizView) cycle(dir int) {
	f := v.steps[v.step].fields[v.field]
	cur := 0
	for i, opt := range f.options {
		if opt == *f.value {
			cur = i
			break
		}
	}
	*f.value = f.options[(cur+dir+len(f.options))%len(f.options)]
}

func (v *quizView) submit(a *App) tea.Cmd {
	if v.pending {
		return nil
	}
	v.pending = true
	v.errMsg = ""
	answers := v.answers
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		return quizDoneMsg{err: a.deps.API.SubmitQuiz(ctx, answers)}
	}
}

func (v *quizView) render(a *App) string {
	if v.done {
		next := tr(a.lang, "Press Enter to see your matches.", "Appuyez sur Entrée pour voir vos correspondances.")
		if !a.authed {
			next = tr(a.lang, "Press Enter to sign in and save your results.", "Appuyez sur Entrée pour vous connecter et sauvegarder vos résultats.")
		}
		return cardStyle.Render(okStyle.Render(tr(a.lang, "Quiz complete!", "Quiz terminé !")) + "\n\n" + next)
	}

	step := v.steps[v.step]
	lines := []string{
		titleStyle.Render(tr(a.lang, step.titleEN, step.titleFR)),
		mutedStyle.Render(tr(a.lang, "Step", "Étape") + " " +
			string(rune('1'+v.step)) + "/4"),
		"",
	}
	for i, f := range step.fields {
		label := tr(a.lang, f.labelEN, f.labelFR)
		row := label + ": " + *f.value
		if i == v.field {
			lines = append(lines, selectedItemStyle.Render("> "+row))
		} else {
			lines = append(lines, unselectedItemStyle.Render("  "+row))
		}
	}
	if v.pending {
		lines = append(lines, "", mutedStyle.Render(tr(a.lang, "Submitting...", "Envoi...")))
	}
	if v.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(v.errMsg))
	}
	action := tr(a.lang, "Enter: next step", "Entrée : étape suivante")
	if v.step == len(v.steps)-1 {
		action = tr(a.lang, "Enter: submit", "Entrée : soumettre")
	}
	lines = append(lines, "", helpStyle.Render(
		tr(a.lang, "arrows to choose, ", "flèches pour choisir, ")+action+
			tr(a.lang, ", Backspace: previous", ", Retour arrière : étape précédente")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
