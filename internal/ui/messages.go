package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bilingua-nb/bilingua-client/internal/inbox"
	"github.com/bilingua-nb/bilingua-client/internal/models"
	"github.com/bilingua-nb/bilingua-client/internal/ws"
)

// messagesFocus is which pane owns keystrokes.
type messagesFocus int

const (
	focusSidebar messagesFocus = iota
	focusThread
	focusComposer
)

// messagesDialog is an optional modal over the thread.
type messagesDialog int

const (
	dialogNone messagesDialog = iota
	dialogMeetup
	dialogReport
)

// messagesView is the inbox: conversation sidebar, message thread with
// per-message translation toggles, and the composer.
type messagesView struct {
	routeConvID int

	conversations []models.ConversationEntry
	messages      []models.MessageEntry
	sidebarCursor int
	threadCursor  int

	focus    messagesFocus
	composer textarea.Model
	sending  bool

	dialog      messagesDialog
	dialogInput textinput.Model
	dialogStage int
	meetup      models.MeetupProposal
	report      models.MessageReport
}

func newMessagesView(id string) *messagesView {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	convID, _ := strconv.Atoi(id)
	return &messagesView{
		routeConvID: convID,
		focus:       focusComposer,
		composer:    ta,
	}
}

func (v *messagesView) inputFocused() bool {
	return v.focus == focusComposer || v.dialog != dialogNone
}

func (v *messagesView) init(a *App) tea.Cmd {
	v.composer.Focus()
	return tea.Batch(v.loadConversations(a), v.selectRoute(a))
}

// selectRoute applies the /messages/:id route parameter to the inbox
// selection before the first thread load.
func (v *messagesView) selectRoute(a *App) tea.Cmd {
	return func() tea.Msg {
		if v.routeConvID != 0 {
			a.deps.Inbox.SelectConversation(a.bgCtx, v.routeConvID)
		}
		entries, err := a.deps.Inbox.Messages(a.bgCtx)
		return messagesLoadedMsg{entries: entries, err: err}
	}
}

func (v *messagesView) loadConversations(a *App) tea.Cmd {
	return func() tea.Msg {
		entries, err := a.deps.Inbox.Conversations(a.bgCtx)
		return conversationsLoadedMsg{entries: entries, err: err}
	}
}

func (v *messagesView) loadMessages(a *App) tea.Cmd {
	return func() tea.Msg {
		entries, err := a.deps.Inbox.Messages(a.bgCtx)
		return messagesLoadedMsg{entries: entries, err: err}
	}
}

func (v *messagesView) update(a *App, msg tea.Msg) (pageView, tea.Cmd) {
	switch msg := msg.(type) {
	case conversationsLoadedMsg:
		if msg.err == nil {
			v.conversations = msg.entries
			v.clampSidebar(a)
		}
		return v, nil

	case messagesLoadedMsg:
		if msg.err == nil {
			v.messages = msg.entries
			if v.threadCursor >= len(v.messages) {
				v.threadCursor = len(v.messages) - 1
			}
			if v.threadCursor < 0 {
				v.threadCursor = 0
			}
		}
		return v, nil

	case cacheUpdatedMsg:
		// Any committed key may concern us; re-read both panes from cache.
		return v, tea.Batch(v.loadConversations(a), v.loadMessages(a))

	case sendDoneMsg:
		v.sending = false
		if msg.err == nil {
			// The draft survives failures for a manual retry.
			v.composer.Reset()
		}
		return v, nil

	case meetupDoneMsg:
		v.dialog = dialogNone
		if msg.err != nil {
			a.Notify(inbox.Notice{Title: tr(a.lang, "Meetup Error", "Erreur de rencontre"), Body: msg.err.Error(), Error: true})
		} else {
			a.Notify(inbox.Notice{Title: tr(a.lang, "Meetup proposed", "Rencontre proposée")})
		}
		return v, nil

	case reportDoneMsg:
		v.dialog = dialogNone
		if msg.err != nil {
			a.Notify(inbox.Notice{Title: tr(a.lang, "Report Error", "Erreur de signalement"), Body: msg.err.Error(), Error: true})
		} else {
			a.Notify(inbox.Notice{Title: tr(a.lang, "Report submitted", "Signalement envoyé")})
		}
		return v, nil

	case tea.KeyMsg:
		if v.dialog != dialogNone {
			return v.updateDialog(a, msg)
		}
		return v.updateKey(a, msg)
	}

	if v.focus == focusComposer {
		var cmd tea.Cmd
		v.composer, cmd = v.composer.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *messagesView) updateKey(a *App, key tea.KeyMsg) (pageView, tea.Cmd) {
	switch key.String() {
	case "tab":
		v.cycleFocus(1)
		return v, nil
	case "shift+tab":
		v.cycleFocus(-1)
		return v, nil
	case "ctrl+r":
		return v, v.reconnect(a)
	case "esc":
		if v.focus == focusComposer {
			v.focus = focusThread
			v.composer.Blur()
			return v, nil
		}
		return v, a.navigate("/dashboard")
	}

	switch v.focus {
	case focusSidebar:
		switch key.String() {
		case "up", "k":
			if v.sidebarCursor > 0 {
				v.sidebarCursor--
			}
		case "down", "j":
			if v.sidebarCursor < len(v.conversations)-1 {
				v.sidebarCursor++
			}
		case "enter":
			if v.sidebarCursor < len(v.conversations) {
				entry := v.conversations[v.sidebarCursor]
				return v, v.selectConversation(a, entry.OtherUser.ID)
			}
		}

	case focusThread:
		switch key.String() {
		case "up", "k":
			if v.threadCursor > 0 {
				v.threadCursor--
			}
		case "down", "j":
			if v.threadCursor < len(v.messages)-1 {
				v.threadCursor++
			}
		case "t":
			if v.threadCursor < len(v.messages) {
				id := v.messages[v.threadCursor].Message.ID
				a.deps.Inbox.ToggleTranslation(a.bgCtx, id)
			}
		case "m":
			v.openMeetupDialog(a)
		case "x":
			if v.threadCursor < len(v.messages) {
				v.openReportDialog(a)
			}
		}

	case focusComposer:
		switch key.String() {
		case "enter":
			return v, v.send(a)
		case "shift+enter":
			v.composer.InsertString("\n")
			return v, nil
		}
		var cmd tea.Cmd
		v.composer, cmd = v.composer.Update(key)
		return v, cmd
	}
	return v, nil
}

func (v *messagesView) cycleFocus(dir int) {
	v.focus = messagesFocus((int(v.focus) + dir + 3) % 3)
	if v.focus == focusComposer {
		v.composer.Focus()
	} else {
		v.composer.Blur()
	}
}

func (v *messagesView) clampSidebar(a *App) {
	if v.sidebarCursor >= len(v.conversations) {
		v.sidebarCursor = len(v.conversations) - 1
	}
	if v.sidebarCursor < 0 {
		v.sidebarCursor = 0
	}
	// Keep the highlighted row in step with the active selection.
	selected := a.deps.Inbox.SelectedUserID()
	for i, c := range v.conversations {
		if c.OtherUser.ID == selected {
			v.sidebarCursor = i
			break
		}
	}
}

func (v *messagesView) selectConversation(a *App, userID int) tea.Cmd {
	return func() tea.Msg {
		a.deps.Inbox.Select(a.bgCtx, userID)
		entries, err := a.deps.Inbox.Messages(a.bgCtx)
		return messagesLoadedMsg{entries: entries, err: err}
	}
}

// send runs the pipeline off the update loop; the composer keeps its draft
// until the success message arrives.
func (v *messagesView) send(a *App) tea.Cmd {
	if v.sending {
		return nil
	}
	draft := v.composer.Value()
	if strings.TrimSpace(draft) == "" {
		return nil
	}
	v.sending = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		return sendDoneMsg{err: a.deps.Inbox.Send(ctx, draft)}
	}
}

func (v *messagesView) reconnect(a *App) tea.Cmd {
	return func() tea.Msg {
		if err := a.deps.Conn.Reconnect(); err != nil {
			a.deps.Recorder.Record("websocket reconnect", err)
			return toastMsg{notice: inbox.Notice{Title: "Connection Error", Body: err.Error(), Error: true}}
		}
		return toastMsg{notice: inbox.Notice{Title: "Reconnected"}}
	}
}

// Dialogs.

func (v *messagesView) openMeetupDialog(a *App) {
	v.dialog = dialogMeetup
	v.dialogStage = 0
	v.meetup = models.MeetupProposal{RecipientID: a.deps.Inbox.SelectedUserID()}
	v.dialogInput = textinput.New()
	v.dialogInput.Placeholder = tr(a.lang, "location", "lieu")
	v.dialogInput.Focus()
}

func (v *messagesView) openReportDialog(a *App) {
	v.dialog = dialogReport
	v.dialogStage = 0
	v.report = models.MessageReport{}
	v.dialogInput = textinput.New()
	v.dialogInput.Placeholder = tr(a.lang, "reason", "raison")
	v.dialogInput.Focus()
}

func (v *messagesView) updateDialog(a *App, key tea.KeyMsg) (pageView, tea.Cmd) {
	switch key.String() {
	case "esc":
		v.dialog = dialogNone
		return v, nil
	case "enter":
		value := strings.TrimSpace(v.dialogInput.Value())
		if v.dialog == dialogMeetup {
			switch v.dialogStage {
			case 0:
				if value == "" {
					return v, nil
				}
				v.meetup.Location = value
				v.dialogStage = 1
				v.dialogInput = textinput.New()
				v.dialogInput.Placeholder = tr(a.lang, "when (e.g. 2026-09-05 18:00)", "quand (p. ex. 2026-09-05 18:00)")
				v.dialogInput.Focus()
				return v, nil
			case 1:
				if value == "" {
					return v, nil
				}
				v.meetup.ProposedAt = value
				v.dialogStage = 2
				v.dialogInput = textinput.New()
				v.dialogInput.Placeholder = tr(a.lang, "note (optional)", "note (facultatif)")
				v.dialogInput.Focus()
				return v, nil
			default:
				v.meetup.Note = value
				return v, v.submitMeetup(a)
			}
		}
		switch v.dialogStage {
		case 0:
			if value == "" {
				return v, nil
			}
			v.report.Reason = value
			v.dialogStage = 1
			v.dialogInput = textinput.New()
			v.dialogInput.Placeholder = tr(a.lang, "details (optional)", "détails (facultatif)")
			v.dialogInput.Focus()
			return v, nil
		default:
			v.report.Details = value
			return v, v.submitReport(a)
		}
	}

	var cmd tea.Cmd
	v.dialogInput, cmd = v.dialogInput.Update(key)
	return v, cmd
}

func (v *messagesView) submitMeetup(a *App) tea.Cmd {
	proposal := v.meetup
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		return meetupDoneMsg{err: a.deps.API.ProposeMeetup(ctx, proposal.RecipientID, proposal)}
	}
}

func (v *messagesView) submitReport(a *App) tea.Cmd {
	if v.threadCursor >= len(v.messages) {
		v.dialog = dialogNone
		return nil
	}
	messageID := v.messages[v.threadCursor].Message.ID
	report := v.report
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 15*time.Second)
		defer cancel()
		return reportDoneMsg{err: a.deps.API.ReportMessage(ctx, messageID, report)}
	}
}

// Rendering.

func (v *messagesView) render(a *App) string {
	sidebar := v.renderSidebar(a)
	thread := v.renderThread(a)
	main := lipgloss.JoinVertical(lipgloss.Left,
		v.renderBanner(a),
		thread,
		v.renderComposer(a),
	)
	page := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
	if v.dialog != dialogNone {
		return lipgloss.JoinVertical(lipgloss.Left, page, v.renderDialog(a))
	}
	return page
}

func (v *messagesView) renderSidebar(a *App) string {
	lines := []string{titleStyle.Render(tr(a.lang, "Conversations", "Conversations"))}
	if len(v.conversations) == 0 {
		lines = append(lines, mutedStyle.Render(tr(a.lang, "none yet", "aucune")))
	}
	selected := a.deps.Inbox.SelectedUserID()
	for i, c := range v.conversations {
		row := c.OtherUser.Username
		if c.OtherUser.ID == selected {
			row = okStyle.Render(row)
		}
		if i == v.sidebarCursor && v.focus == focusSidebar {
			lines = append(lines, selectedItemStyle.Render("> "+row))
		} else {
			lines = append(lines, unselectedItemStyle.Render("  "+row))
		}
	}
	return sidebarStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderBanner shows connection trouble without blocking the thread; REST
// fallback keeps messaging usable while the socket is down.
func (v *messagesView) renderBanner(a *App) string {
	if a.deps.Conn.Connected() {
		return ""
	}
	var detail string
	if err := a.deps.Conn.Err(); err != nil {
		detail = " " + mutedStyle.Render(err.Error())
	}
	state := a.deps.Conn.CurrentState()
	if state == ws.StateConnecting {
		return bannerStyle.Render(tr(a.lang, "Connecting...", "Connexion..."))
	}
	return bannerStyle.Render(tr(a.lang,
		"Chat connection lost. Messages fall back to slower delivery. [ctrl+r] Reconnect",
		"Connexion au clavardage perdue. Les messages passent par une livraison plus lente. [ctrl+r] Reconnecter") + detail)
}

func (v *messagesView) renderThread(a *App) string {
	if a.deps.Inbox.SelectedUserID() == 0 {
		return cardStyle.Render(mutedStyle.Render(tr(a.lang,
			"Select a conversation on the left.",
			"Sélectionnez une conversation à gauche.")))
	}
	lines := make([]string, 0, len(v.messages)+1)
	if len(v.messages) == 0 {
		lines = append(lines, mutedStyle.Render(tr(a.lang,
			"No messages yet. Say bonjour!",
			"Pas encore de messages. Say hello!")))
	}
	selfID := a.deps.Conn.UserID()
	if selfID == 0 && a.user != nil {
		selfID = a.user.ID
	}
	for i, e := range v.messages {
		style := otherBubbleStyle
		if e.Message.SenderID == selfID {
			style = selfBubbleStyle
		}
		body := e.Message.Content
		if a.deps.Inbox.TranslationShown(e.Message.ID) {
			switch {
			case e.Message.TranslatedContent != "":
				body += "\n" + translationStyle.Render(e.Message.TranslatedContent)
			case a.deps.Inbox.Translating(e.Message.ID):
				body += "\n" + mutedStyle.Render(tr(a.lang, "translating...", "traduction..."))
			}
		}
		row := style.Render(e.Sender.Username + ": " + body)
		if i == v.threadCursor && v.focus == focusThread {
			row = selectedItemStyle.Render(row)
		}
		lines = append(lines, row)
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *messagesView) renderComposer(a *App) string {
	badge := ""
	switch a.deps.Inbox.State() {
	case inbox.SendSending:
		badge = mutedStyle.Render(tr(a.lang, "sending...", "envoi..."))
	case inbox.SendSent:
		badge = okStyle.Render(tr(a.lang, "sent", "envoyé"))
	case inbox.SendFailed:
		badge = errorStyle.Render(tr(a.lang, "failed, draft kept", "échec, brouillon conservé"))
	}
	help := helpStyle.Render(tr(a.lang,
		"enter send, shift+enter newline, tab panes, t translate, m meetup, x report",
		"entrée envoyer, maj+entrée nouvelle ligne, tab panneaux, t traduire, m rencontre, x signaler"))
	return lipgloss.JoinVertical(lipgloss.Left, v.composer.View(), badge, help)
}

func (v *messagesView) renderDialog(a *App) string {
	var title string
	if v.dialog == dialogMeetup {
		title = tr(a.lang, "Propose a Meetup", "Proposer une rencontre")
	} else {
		title = tr(a.lang, "Report Message", "Signaler le message")
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		fmt.Sprintf("%s %d", tr(a.lang, "step", "étape"), v.dialogStage+1),
		v.dialogInput.View(),
		helpStyle.Render(tr(a.lang, "enter next, esc cancel", "entrée suivant, échap annuler")),
	))
}
