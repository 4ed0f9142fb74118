package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// regionsView lists unlock challenges across the province.
type regionsView struct {
	regions []models.Region
	cursor  int
	loading bool
	errMsg  string
}

func newRegionsView() *regionsView { return &regionsView{loading: true} }

func (v *regionsView) init(a *App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		regions, err := a.deps.API.Regions(ctx)
		return regionsLoadedMsg{regions: regions, err: err}
	}
}

func (v *regionsView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case regionsLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			a.deps.Recorder.Record("load regions", msg.err)
			return v, nil
		}
		v.regions = msg.regions
		return v, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.regions)-1 {
				v.cursor++
			}
		case "enter":
			if v.cursor < len(v.regions) {
				return v, a.navigate(fmt.Sprintf("/regions/%d", v.regions[v.cursor].ID))
			}
		case "r":
			v.loading = true
			v.errMsg = ""
			return v, v.init(a)
		}
	}
	return v, nil
}

func (v *regionsView) render(a *App) string {
	lines := []string{titleStyle.Render(tr(a.lang, "Regions", "Régions")), ""}
	switch {
	case v.loading:
		lines = append(lines, mutedStyle.Render(tr(a.lang, "Loading regions...", "Chargement des régions...")))
	case v.errMsg != "":
		lines = append(lines, errorStyle.Render(v.errMsg),
			helpStyle.Render(tr(a.lang, "[r] retry", "[r] réessayer")))
	default:
		for i, r := range v.regions {
			row := regionProgressLine(a.lang, r)
			if i == v.cursor {
				lines = append(lines, selectedItemStyle.Render("> "+row))
			} else {
				lines = append(lines, unselectedItemStyle.Render("  "+row))
			}
		}
	}
	lines = append(lines, "", helpStyle.Render(tr(a.lang, "[enter] details", "[entrée] détails")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// regionProgressLine renders one region with its unlock progress bar.
func regionProgressLine(lang Language, r models.Region) string {
	name := r.Name
	if r.IsVirtual {
		name += mutedStyle.Render(tr(lang, " (virtual)", " (virtuel)"))
	}
	if r.IsUnlocked {
		return name + "  " + okStyle.Render(tr(lang, "unlocked", "débloquée"))
	}
	return fmt.Sprintf("%s  %s %.0f%%", name, progressBar(r.Progress(), 16), r.Progress())
}

// progressBar draws a fixed-width unicode bar for a 0-100 percentage.
func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return okStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

// regionDetailView shows one region's unlock challenge.
type regionDetailView struct {
	id      int
	region  *models.Region
	loading bool
	errMsg  string
}

func newRegionDetailView(id string) *regionDetailView {
	n, _ := strconv.Atoi(id)
	return &regionDetailView{id: n, loading: true}
}

func (v *regionDetailView) init(a *App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		region, err := a.deps.API.Region(ctx, v.id)
		return regionLoadedMsg{region: region, err: err}
	}
}

func (v *regionDetailView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case regionLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		v.region = msg.region
		return v, nil
	case tea.KeyMsg:
		if msg.String() == "esc" || msg.String() == "backspace" {
			return v, a.navigate("/regions")
		}
	}
	return v, nil
}

func (v *regionDetailView) render(a *App) string {
	if v.loading {
		return boxStyle.Render(mutedStyle.Render(tr(a.lang, "Loading region...", "Chargement de la région...")))
	}
	if v.errMsg != "" {
		return boxStyle.Render(errorStyle.Render(v.errMsg))
	}
	r := v.region
	desc := r.Description
	if a.lang == LangFR && r.FrenchDescription != "" {
		desc = r.FrenchDescription
	}
	lines := []string{
		titleStyle.Render(r.Name),
		"",
		desc,
		"",
	}
	if r.IsUnlocked {
		lines = append(lines, okStyle.Render(tr(a.lang,
			"This region is unlocked. Members here can match with each other.",
			"Cette région est débloquée. Les membres d'ici peuvent être jumelés entre eux.")))
	} else {
		lines = append(lines,
			progressBar(r.Progress(), 32)+fmt.Sprintf(" %.0f%%", r.Progress()),
			fmt.Sprintf(tr(a.lang,
				"%d of %d members needed to unlock",
				"%d membres sur %d nécessaires pour débloquer"),
				r.TotalUsers(), r.RequiredUsersToUnlock),
			mutedStyle.Render(fmt.Sprintf(tr(a.lang,
				"French speakers: %d   English speakers: %d",
				"Francophones : %d   Anglophones : %d"),
				r.FrenchUserCount, r.EnglishUserCount)),
		)
	}
	lines = append(lines, "", helpStyle.Render(tr(a.lang, "[esc] back", "[échap] retour")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
