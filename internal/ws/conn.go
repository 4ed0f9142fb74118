package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jww "github.com/spf13/jwalterweatherman"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// State is the connection lifecycle phase.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "error"
	}
}

// ConnError marks a failure as a connectivity problem. Downstream
// classification discriminates on this type instead of matching substrings
// in error messages.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("websocket %s failed", e.Op)
	}
	return fmt.Sprintf("websocket %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// Listener receives every inbound frame. Listeners attach and detach
// independently and must not assume exclusive ownership of the connection.
type Listener func(Frame)

// Conn is the shared long-lived connection to the platform. One Conn is
// created at startup and handed to every consumer; it is never duplicated.
type Conn struct {
	url    string
	dialer *websocket.Dialer
	header map[string][]string

	mu        sync.RWMutex
	ws        *websocket.Conn
	state     State
	err       error
	userID    int
	listeners map[string]Listener
	send      chan []byte
	done      chan struct{}
	gen       int // bumped per (re)connect so stale pumps exit quietly
}

// NewConn prepares a connection handle for the given socket URL. Dial is not
// attempted until Connect or Reconnect.
func NewConn(url string) *Conn {
	return &Conn{
		url:       url,
		dialer:    websocket.DefaultDialer,
		state:     StateConnecting,
		listeners: make(map[string]Listener),
	}
}

// SetAuthHeader attaches the session token to the websocket handshake.
func (c *Conn) SetAuthHeader(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		c.header = nil
		return
	}
	c.header = map[string][]string{"Authorization": {"Bearer " + token}}
}

// Connect dials the socket and starts the pumps.
func (c *Conn) Connect() error {
	c.mu.Lock()
	if c.ws != nil {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	url, header := c.url, c.header
	c.mu.Unlock()

	ws, _, err := c.dialer.Dial(url, header)
	if err != nil {
		cerr := &ConnError{Op: "dial", Err: err}
		c.mu.Lock()
		c.state = StateError
		c.err = cerr
		c.mu.Unlock()
		return cerr
	}

	c.mu.Lock()
	c.ws = ws
	c.state = StateConnected
	c.err = nil
	c.send = make(chan []byte, sendBuffer)
	c.done = make(chan struct{})
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.readPump(ws, gen)
	go c.writePump(ws, c.send, c.done)
	jww.INFO.Printf("ws: connected to %s", url)
	return nil
}

// Reconnect tears down any existing socket and dials again.
func (c *Conn) Reconnect() error {
	c.mu.Lock()
	if c.ws != nil {
		c.ws.Close()
		close(c.done)
		c.ws = nil
	}
	c.gen++
	c.state = StateConnecting
	c.err = nil
	c.mu.Unlock()
	return c.Connect()
}

// Close shuts the connection down. A deliberate close is not a connectivity
// failure, so Err reports nil afterwards.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws != nil {
		c.ws.Close()
		close(c.done)
		c.ws = nil
	}
	// Orphan the read pump so its exit does not record a failure.
	c.gen++
	c.state = StateError
	c.err = nil
}

// Connected reports whether the socket is currently usable.
func (c *Conn) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == StateConnected
}

// CurrentState returns the lifecycle phase.
func (c *Conn) CurrentState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the last connectivity error, nil while healthy.
func (c *Conn) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// UserID returns the id acknowledged by the server's connected frame, zero
// before the handshake completes.
func (c *Conn) UserID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// AddListener registers a named frame listener. Registering an existing name
// replaces the previous listener.
func (c *Conn) AddListener(name string, l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[name] = l
}

// RemoveListener detaches a listener by name.
func (c *Conn) RemoveListener(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.listeners, name)
}

// Send queues a chat message for the wire. The boolean reports whether the
// frame was dispatched; true does not guarantee server receipt. A false
// return tells the caller to take the REST fallback.
func (c *Conn) Send(recipientID int, content string) bool {
	frame := Frame{Type: TypeSend, RecipientID: recipientID, Content: content}
	data, err := frame.Encode()
	if err != nil {
		jww.ERROR.Printf("ws: encode send frame: %v", err)
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateConnected || c.ws == nil {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		jww.WARN.Print("ws: send buffer full, frame dropped")
		return false
	}
}

func (c *Conn) readPump(ws *websocket.Conn, gen int) {
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			// Only the pump for the live socket may flip the state;
			// a pump orphaned by Reconnect exits without touching it.
			if c.gen == gen {
				c.state = StateError
				c.err = &ConnError{Op: "read", Err: err}
				c.ws = nil
			}
			c.mu.Unlock()
			jww.WARN.Printf("ws: read pump exiting: %v", err)
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			jww.ERROR.Printf("ws: undecodable frame: %v", err)
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Conn) handleFrame(frame Frame) {
	switch frame.Type {
	case TypeConnected:
		c.mu.Lock()
		c.userID = frame.UserID
		c.mu.Unlock()
		jww.INFO.Printf("ws: handshake acknowledged for user %d", frame.UserID)
	case TypeMessageSent:
		jww.DEBUG.Print("ws: send confirmed")
	case TypeError:
		jww.WARN.Printf("ws: server error frame: %s", frame.Message)
	}

	c.mu.RLock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.RUnlock()
	for _, l := range listeners {
		l(frame)
	}
}

func (c *Conn) writePump(ws *websocket.Conn, send chan []byte, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				jww.WARN.Printf("ws: write failed: %v", err)
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
