package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Type: TypeSend, RecipientID: 2, Content: "bonjour"}
	data, err := f.Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
}

func TestDecodeFrameKinds(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"type":"connected","userId":42}`))
	require.NoError(t, err)
	assert.Equal(t, TypeConnected, f.Type)
	assert.Equal(t, 42, f.UserID)

	f, err = DecodeFrame([]byte(`{"type":"error","message":"boom"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeError, f.Type)
	assert.Equal(t, "boom", f.Message)

	_, err = DecodeFrame([]byte(`{not json`))
	require.Error(t, err)
}

// testServer upgrades connections and replays scripted frames.
type testServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	received []Frame
	authz    string
}

func newTestServer(t *testing.T, greet []Frame) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.authz = r.Header.Get("Authorization")
		ts.mu.Unlock()

		conn, err := ts.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, f := range greet {
			data, _ := f.Encode()
			conn.WriteMessage(websocket.TextMessage, data)
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if f, err := DecodeFrame(data); err == nil {
				ts.mu.Lock()
				ts.received = append(ts.received, f)
				ts.mu.Unlock()
			}
		}
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

func (ts *testServer) receivedCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.received)
}

func TestConnectHandshakeAndListeners(t *testing.T) {
	ts := newTestServer(t, []Frame{
		{Type: TypeConnected, UserID: 42},
		{Type: TypeMessage, SenderID: 2, Content: "salut"},
	})

	c := NewConn(ts.url())
	c.SetAuthHeader("tok-1")

	frames := make(chan Frame, 8)
	c.AddListener("test", func(f Frame) { frames <- f })

	require.NoError(t, c.Connect())
	defer c.Close()
	assert.True(t, c.Connected())

	var got []Frame
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case f := <-frames:
			got = append(got, f)
		case <-timeout:
			t.Fatalf("expected 2 frames, got %d", len(got))
		}
	}
	assert.Equal(t, TypeConnected, got[0].Type)
	assert.Equal(t, 42, c.UserID())
	assert.Equal(t, "salut", got[1].Content)

	ts.mu.Lock()
	assert.Equal(t, "Bearer tok-1", ts.authz)
	ts.mu.Unlock()
}

func TestSendDispatchesOverSocket(t *testing.T) {
	ts := newTestServer(t, nil)
	c := NewConn(ts.url())
	require.NoError(t, c.Connect())
	defer c.Close()

	assert.True(t, c.Send(2, "bonjour"))
	assert.Eventually(t, func() bool { return ts.receivedCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	assert.Equal(t, 2, ts.received[0].RecipientID)
	assert.Equal(t, "bonjour", ts.received[0].Content)
}

func TestSendReturnsFalseWhenDisconnected(t *testing.T) {
	c := NewConn("ws://127.0.0.1:1/ws")
	assert.False(t, c.Send(2, "bonjour"), "a send with no socket must report the fallback path")
}

func TestConnectFailureYieldsConnError(t *testing.T) {
	c := NewConn("ws://127.0.0.1:1/ws")
	err := c.Connect()
	require.Error(t, err)

	var connErr *ConnError
	assert.True(t, errors.As(err, &connErr))
	assert.Equal(t, StateError, c.CurrentState())
	assert.Error(t, c.Err())
}

func TestCloseIsNotAConnectivityFailure(t *testing.T) {
	ts := newTestServer(t, nil)
	c := NewConn(ts.url())
	require.NoError(t, c.Connect())

	c.Close()
	assert.False(t, c.Connected())
	assert.NoError(t, c.Err(), "a deliberate close must not report an error")

	// The torn-down read pump must not record a failure either.
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, c.Err())
}

// After a close, the next dial must present the current auth header; a stale
// socket must never survive into a new identity's session.
func TestConnectAfterCloseDialsWithFreshCredentials(t *testing.T) {
	ts := newTestServer(t, nil)
	c := NewConn(ts.url())
	c.SetAuthHeader("tok-first")
	require.NoError(t, c.Connect())

	c.Close()
	c.SetAuthHeader("tok-second")
	require.NoError(t, c.Connect())
	defer c.Close()

	assert.True(t, c.Connected())
	ts.mu.Lock()
	defer ts.mu.Unlock()
	assert.Equal(t, "Bearer tok-second", ts.authz)
}

func TestReconnectAfterServerDrop(t *testing.T) {
	ts := newTestServer(t, []Frame{{Type: TypeConnected, UserID: 7}})
	c := NewConn(ts.url())
	require.NoError(t, c.Connect())

	// The server going away flips the connection into the error state.
	ts.srv.CloseClientConnections()
	assert.Eventually(t, func() bool { return !c.Connected() }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Reconnect())
	defer c.Close()
	assert.True(t, c.Connected())
	assert.NoError(t, c.Err())
}
