package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/bilingua-nb/bilingua-client/internal/api"
	"github.com/bilingua-nb/bilingua-client/internal/cache"
	"github.com/bilingua-nb/bilingua-client/internal/diag"
	"github.com/bilingua-nb/bilingua-client/internal/guard"
	"github.com/bilingua-nb/bilingua-client/internal/inbox"
	"github.com/bilingua-nb/bilingua-client/internal/models"
	"github.com/bilingua-nb/bilingua-client/internal/storage"
	"github.com/bilingua-nb/bilingua-client/internal/ws"
)

// Deps are the shared subsystems the UI consumes. The connection and caches
// are owned elsewhere; the UI only subscribes and calls.
type Deps struct {
	API      *api.Client
	Conn     *ws.Conn
	Store    *cache.Store
	Inbox    *inbox.Inbox
	DB       *storage.ClientDB
	Recorder *diag.Recorder
	DevMode  bool
}

type phase int

const (
	phaseLoading phase = iota
	phaseStartupError
	phaseReady
	phaseCrashed
)

// eventMsg wraps messages pushed from background goroutines through the
// event channel, so the channel listener can re-arm itself exactly once.
type eventMsg struct{ inner tea.Msg }

type toast struct {
	id     int
	notice inbox.Notice
}

// pageView is one routed page. The navigator constructs a view only after
// its route's guards allow it.
type pageView interface {
	init(a *App) tea.Cmd
	update(a *App, msg tea.Msg) (pageView, tea.Cmd)
	render(a *App) string
}

// focusable is implemented by views that own a text input; global shortcuts
// are suppressed while one is focused.
type focusable interface {
	inputFocused() bool
}

// App is the root bubbletea model.
type App struct {
	deps   Deps
	table  *guard.Table
	events chan tea.Msg

	lang   Language
	width  int
	height int

	phase      phase
	startupErr error
	crashErr   error

	authed bool
	user   *models.User
	admin  *models.Admin

	path string
	view pageView

	toasts   []toast
	toastSeq int

	bgCtx    context.Context
	bgCancel context.CancelFunc
}

// NewApp builds the root model. Background work runs until Close.
func NewApp(deps Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		deps:     deps,
		table:    guard.DefaultTable(),
		events:   make(chan tea.Msg, 64),
		lang:     LangEN,
		phase:    phaseLoading,
		path:     "/",
		bgCtx:    ctx,
		bgCancel: cancel,
	}
	if deps.DB != nil {
		if pref, err := deps.DB.Preference("language"); err == nil && pref != "" {
			a.lang = Language(pref)
		}
	}
	return a
}

// Close stops background work.
func (a *App) Close() { a.bgCancel() }

// SetInbox attaches the inbox after construction. The inbox wants the app's
// notifier and the app wants the inbox, so wiring happens in two steps.
func (a *App) SetInbox(i *inbox.Inbox) { a.deps.Inbox = i }

// Notify feeds a toast from outside the update loop.
func (a *App) Notify(n inbox.Notice) {
	select {
	case a.events <- toastMsg{notice: n}:
	default:
		jww.WARN.Print("ui: event channel full, notice dropped")
	}
}

// PushEvent feeds any message from outside the update loop.
func (a *App) PushEvent(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
		jww.WARN.Print("ui: event channel full, event dropped")
	}
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg { return eventMsg{inner: <-a.events} }
}

// Init starts the event listener and the auth bootstrap.
func (a *App) Init() tea.Cmd {
	a.deps.Store.Subscribe("ui", func(key string) {
		a.PushEvent(cacheUpdatedMsg{key: key})
	})
	return tea.Batch(a.waitForEvent(), a.bootstrapCmd())
}

func (a *App) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := a.deps.API.Bootstrap(a.bgCtx)
		if err != nil {
			return bootstrapDoneMsg{err: err}
		}
		admin, aerr := a.deps.API.AdminStatus(a.bgCtx)
		if aerr != nil {
			jww.DEBUG.Printf("ui: admin status check failed: %v", aerr)
			admin = &api.AdminStatus{}
		}
		return bootstrapDoneMsg{status: status, admin: admin}
	}
}

func (a *App) flags() guard.Flags {
	f := guard.Flags{
		Authenticated: a.authed,
		DevMode:       a.deps.DevMode,
	}
	if a.admin != nil {
		f.Admin = true
		f.SuperAdmin = a.admin.Role == "superadmin"
	}
	return f
}

// navigate resolves a path through the guard table and constructs the
// resulting view. Guards run first; a denied route's view is never built.
func (a *App) navigate(path string) tea.Cmd {
	match, finalPath := a.table.ResolveFollowing(path, a.flags())
	a.path = finalPath
	a.view = a.buildView(match)
	if a.view == nil {
		a.view = newStaticView(guard.ViewNotFound)
	}
	return a.view.init(a)
}

// Update implements tea.Model with a panic boundary: an update that blows up
// swaps the whole UI for a recovery card instead of a blank screen.
func (a *App) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			jww.ERROR.Printf("ui: update panic: %v", r)
			a.crashErr = fmt.Errorf("%v", r)
			a.phase = phaseCrashed
			model, cmd = a, nil
		}
	}()
	return a.updateInner(msg)
}

func (a *App) updateInner(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		_, cmd := a.updateInner(msg.inner)
		return a, tea.Batch(cmd, a.waitForEvent())

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case bootstrapDoneMsg:
		return a, a.handleBootstrap(msg)

	case loginDoneMsg:
		if msg.err == nil && msg.status != nil && msg.status.Authenticated {
			return a, a.completeLogin(msg.status)
		}

	case adminLoginDoneMsg:
		if msg.err == nil && msg.status != nil && msg.status.IsAdmin {
			a.admin = msg.status.Admin
			return a, a.navigate("/admin")
		}

	case logoutDoneMsg:
		a.authed = false
		a.user = nil
		a.admin = nil
		// Drop the socket so the next login dials with its own credentials
		// instead of riding the previous identity's session.
		a.deps.Conn.Close()
		if a.deps.DB != nil {
			a.deps.DB.ClearSession()
		}
		return a, a.navigate("/")

	case navigateMsg:
		return a, a.navigate(msg.path)

	case toastMsg:
		a.toastSeq++
		t := toast{id: a.toastSeq, notice: msg.notice}
		a.toasts = append(a.toasts, t)
		return a, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: t.id}
		})

	case toastExpiredMsg:
		kept := a.toasts[:0]
		for _, t := range a.toasts {
			if t.id != msg.id {
				kept = append(kept, t)
			}
		}
		a.toasts = kept

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}
	}

	if a.phase == phaseStartupError {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "r", "enter":
				a.phase = phaseLoading
				a.startupErr = nil
				return a, a.bootstrapCmd()
			case "q":
				return a, tea.Quit
			}
		}
		return a, nil
	}
	if a.phase == phaseCrashed {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "r", "enter":
				a.crashErr = nil
				a.phase = phaseReady
				return a, a.navigate("/")
			case "q":
				return a, tea.Quit
			}
		}
		return a, nil
	}

	if a.view != nil {
		next, cmd := a.view.update(a, msg)
		a.view = next
		return a, cmd
	}
	return a, nil
}

func (a *App) handleBootstrap(msg bootstrapDoneMsg) tea.Cmd {
	if msg.err != nil {
		a.phase = phaseStartupError
		a.startupErr = msg.err
		a.deps.Recorder.Record("auth bootstrap", msg.err)
		return nil
	}
	a.phase = phaseReady
	if msg.status.Authenticated {
		a.authed = true
		a.user = msg.status.User
	}
	if msg.admin != nil && msg.admin.IsAdmin {
		a.admin = msg.admin.Admin
	}
	cmds := []tea.Cmd{a.navigate(a.path)}
	if a.authed {
		cmds = append(cmds, a.connectCmd())
	}
	return tea.Batch(cmds...)
}

func (a *App) completeLogin(status *api.AuthStatus) tea.Cmd {
	a.authed = true
	a.user = status.User
	if a.deps.DB != nil {
		// A fresh session also resets the session-scoped diagnostics.
		a.deps.DB.ClearDiagnostics()
		if status.Token != "" {
			if err := a.deps.DB.SaveSession(status.Token); err != nil {
				jww.WARN.Printf("ui: save session: %v", err)
			}
		}
	}
	return tea.Batch(a.connectCmd(), a.navigate("/dashboard"))
}

// connectCmd starts the inbox sync loop and dials the shared socket. The
// inbox starts whether or not the dial succeeds: the frame listener must be
// in place before any (re)connect delivers frames, and the conversation poll
// keeps working over REST while the socket is down.
func (a *App) connectCmd() tea.Cmd {
	return func() tea.Msg {
		a.deps.Inbox.Start(a.bgCtx, a.deps.Conn)
		a.deps.Conn.SetAuthHeader(a.deps.API.Token())
		if err := a.deps.Conn.Connect(); err != nil {
			a.deps.Recorder.Record("websocket connect", err)
		}
		return nil
	}
}

func (a *App) handleGlobalKey(key tea.KeyMsg) (tea.Cmd, bool) {
	if key.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if f, ok := a.view.(focusable); ok && f.inputFocused() {
		return nil, false
	}
	switch key.String() {
	case "alt+h":
		return a.navigate("/"), true
	case "alt+d":
		if a.authed {
			return a.navigate("/dashboard"), true
		}
	case "alt+l":
		if a.authed {
			return a.logoutCmd(), true
		}
	case "ctrl+t":
		a.lang = a.lang.toggle()
		if a.deps.DB != nil {
			a.deps.DB.SetPreference("language", string(a.lang))
		}
		return nil, true
	case "q":
		return tea.Quit, true
	}
	return nil, false
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.bgCtx, 10*time.Second)
		defer cancel()
		err := a.deps.API.Logout(ctx)
		if err != nil {
			jww.WARN.Printf("ui: logout: %v", err)
		}
		return logoutDoneMsg{err: err}
	}
}

// View implements tea.Model, also behind the panic boundary.
func (a *App) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			jww.ERROR.Printf("ui: render panic: %v", r)
			a.crashErr = fmt.Errorf("%v", r)
			a.phase = phaseCrashed
			out = a.renderCrash()
		}
	}()

	switch a.phase {
	case phaseLoading:
		return a.renderLoading()
	case phaseStartupError:
		return a.renderStartupError()
	case phaseCrashed:
		return a.renderCrash()
	}

	body := ""
	if a.view != nil {
		body = a.view.render(a)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		body,
		a.renderToasts(),
	)
}

func (a *App) renderHeader() string {
	title := titleStyle.Render("Bilingua NB")
	who := mutedStyle.Render(tr(a.lang, "not signed in", "non connecté"))
	if a.authed && a.user != nil {
		who = okStyle.Render(a.user.Username)
	}
	langTag := mutedStyle.Render("[" + string(a.lang) + "]")
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", who, "  ", langTag)
}

func (a *App) renderToasts() string {
	if len(a.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(a.toasts))
	for _, t := range a.toasts {
		style := toastStyle.BorderForeground(okColor)
		if t.notice.Error {
			style = toastStyle.BorderForeground(errorColor)
		}
		text := t.notice.Title
		if t.notice.Body != "" {
			text += ": " + t.notice.Body
		}
		lines = append(lines, style.Render(text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) renderLoading() string {
	return boxStyle.Render(tr(a.lang,
		"Loading application...",
		"Chargement de l'application..."))
}

func (a *App) renderStartupError() string {
	msg := tr(a.lang,
		"Connection Issue\n\nWe're having trouble connecting to the server. This might be due to network issues or server maintenance.",
		"Problème de connexion\n\nNous avons des difficultés à nous connecter au serveur. Cela peut être dû à des problèmes de réseau ou à une maintenance du serveur.")
	detail := ""
	if a.startupErr != nil {
		detail = "\n\n" + mutedStyle.Render(a.startupErr.Error())
	}
	actions := "\n\n" + tr(a.lang, "[r] Try Again   [q] Quit", "[r] Réessayer   [q] Quitter")
	return boxStyle.BorderForeground(errorColor).Render(errorStyle.Render(msg) + detail + actions)
}

func (a *App) renderCrash() string {
	msg := tr(a.lang,
		"Something went wrong\n\nWe're sorry, but an error occurred while rendering the application.",
		"Une erreur s'est produite\n\nNous sommes désolés, mais une erreur s'est produite lors du rendu de l'application.")
	actions := "\n\n" + tr(a.lang, "[r] Reload   [q] Quit", "[r] Recharger   [q] Quitter")
	return boxStyle.BorderForeground(errorColor).Render(errorStyle.Render(msg) + actions)
}
