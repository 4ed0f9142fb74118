package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilingua-nb/bilingua-client/internal/api"
	"github.com/bilingua-nb/bilingua-client/internal/cache"
	"github.com/bilingua-nb/bilingua-client/internal/diag"
	"github.com/bilingua-nb/bilingua-client/internal/inbox"
	"github.com/bilingua-nb/bilingua-client/internal/ws"
)

// newTestApp wires an App against the given socket URL. The REST client
// points at a dead port; tests that need live REST traffic stub the server.
func newTestApp(t *testing.T, wsURL string) *App {
	t.Helper()
	client, err := api.NewClient("http://127.0.0.1:1")
	require.NoError(t, err)

	store := cache.NewStore(cache.NewMemory())
	conn := ws.NewConn(wsURL)
	ib := inbox.New(client, conn, store, nil)

	a := NewApp(Deps{
		API:      client,
		Conn:     conn,
		Store:    store,
		Inbox:    ib,
		Recorder: diag.NewRecorder(nil),
	})
	t.Cleanup(a.Close)
	return a
}

// echoServer upgrades websocket handshakes and holds the connection open.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnectStartsInboxEvenWhenDialFails(t *testing.T) {
	a := newTestApp(t, "ws://127.0.0.1:1/ws")

	a.connectCmd()()

	assert.True(t, a.deps.Inbox.Started(),
		"the sync loop must run so the poll covers messaging while the socket is down")
	assert.False(t, a.deps.Conn.Connected())
}

func TestLogoutClosesSocket(t *testing.T) {
	srv := echoServer(t)
	a := newTestApp(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	a.authed = true

	require.NoError(t, a.deps.Conn.Connect())
	require.True(t, a.deps.Conn.Connected())

	a.updateInner(logoutDoneMsg{})

	assert.False(t, a.authed)
	assert.Eventually(t, func() bool { return !a.deps.Conn.Connected() },
		time.Second, 10*time.Millisecond)
	assert.NoError(t, a.deps.Conn.Err(), "logout is a deliberate close, not a failure")
}

func TestTruncateCutsOnRunes(t *testing.T) {
	assert.Equal(t, "court", truncate("court", 10))

	long := strings.Repeat("é", 20) + "où ça"
	got := truncate(long, 10)
	assert.True(t, utf8.ValidString(got), "truncation must not split a multibyte rune")
	assert.Equal(t, 10, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}
