package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/bilingua-nb/bilingua-client/internal/cache"
	"github.com/bilingua-nb/bilingua-client/internal/models"
	"github.com/bilingua-nb/bilingua-client/internal/ws"
)

// ConversationsKey is the cache key of the conversation list.
const ConversationsKey = "/api/conversations"

// pollInterval is how often the conversation list refetches.
const pollInterval = 5 * time.Second

// MessagesKey is the cache key of one conversation's messages.
func MessagesKey(conversationID int) string {
	return fmt.Sprintf("/api/conversations/%d/messages", conversationID)
}

// Socket is the consumed connection capability. The inbox never manages the
// socket lifecycle; it only subscribes to frames and calls Send.
type Socket interface {
	Connected() bool
	Send(recipientID int, content string) bool
}

// API is the REST surface the inbox falls back to.
type API interface {
	Conversations(ctx context.Context) ([]models.ConversationEntry, error)
	Messages(ctx context.Context, conversationID int) ([]models.MessageEntry, error)
	SendMessage(ctx context.Context, conversationID int, content string) (*models.Message, error)
	Translate(ctx context.Context, messageID int) (string, error)
}

// SendState is the send pipeline phase.
type SendState int

const (
	SendIdle SendState = iota
	SendSending
	SendSent
	SendFailed
)

// Notice is a non-blocking user notification (a toast).
type Notice struct {
	Title string
	Body  string
	Error bool
}

// ErrNoConversation is returned when the fallback path cannot resolve a
// conversation id for the selected user from the local cache.
var ErrNoConversation = errors.New("conversation not found")

type translation struct {
	shown    bool
	inflight bool
}

// Inbox owns the client side of conversation synchronization: the polled
// conversation list, the active conversation's message cache, the send
// pipeline, and per-message translation toggles.
type Inbox struct {
	api    API
	sock   Socket
	store  *cache.Store
	notify func(Notice)

	mu             sync.Mutex
	started        bool
	selectedUserID int
	activeConvID   int
	sendState      SendState
	translations   map[int]*translation
}

// New wires an Inbox over the shared cache store, socket handle, and REST
// client. notify receives toast notifications and may be nil.
func New(apiClient API, sock Socket, store *cache.Store, notify func(Notice)) *Inbox {
	if notify == nil {
		notify = func(Notice) {}
	}
	i := &Inbox{
		api:          apiClient,
		sock:         sock,
		store:        store,
		notify:       notify,
		translations: make(map[int]*translation),
	}
	store.Register(ConversationsKey, 0, func(ctx context.Context) (string, error) {
		entries, err := apiClient.Conversations(ctx)
		if err != nil {
			return "", err
		}
		raw, err := json.Marshal(entries)
		return string(raw), err
	})
	return i
}

// Start attaches the frame listener and begins the conversation list poll.
// It returns immediately; background work stops when ctx is done. Start does
// not require a live socket: the listener fires once a dial succeeds, and the
// poll keeps the conversation list fresh over REST in the meantime. Calling
// Start again is a no-op, so re-logins and reconnects cannot stack pollers.
func (i *Inbox) Start(ctx context.Context, conn *ws.Conn) {
	i.mu.Lock()
	if i.started {
		i.mu.Unlock()
		return
	}
	i.started = true
	i.mu.Unlock()

	conn.AddListener("inbox", i.HandleFrame)
	go i.store.Poll(ctx, ConversationsKey, pollInterval)
	go func() {
		<-ctx.Done()
		conn.RemoveListener("inbox")
		i.mu.Lock()
		i.started = false
		i.mu.Unlock()
	}()
}

// Started reports whether the sync loop is running.
func (i *Inbox) Started() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.started
}

// HandleFrame reacts to inbound socket frames. A message frame invalidates
// the conversation list and the active conversation's messages; message
// caches of unselected conversations stay lazy and refetch on selection.
func (i *Inbox) HandleFrame(f ws.Frame) {
	switch f.Type {
	case ws.TypeMessage:
		i.mu.Lock()
		active := i.activeConvID
		i.mu.Unlock()

		keys := []string{ConversationsKey}
		if active != 0 {
			keys = append(keys, MessagesKey(active))
		}
		i.store.Invalidate(context.Background(), keys...)
	case ws.TypeError:
		body := f.Message
		if body == "" {
			body = "There was an error with the chat connection"
		}
		i.notify(Notice{Title: "Connection Error", Body: body, Error: true})
	case ws.TypeConnected:
		jww.DEBUG.Printf("inbox: connection confirmed for user %d", f.UserID)
	case ws.TypeMessageSent:
		// Advisory only; the cache invalidation on send already covers it.
	}
}

// Select picks the other-party user whose conversation is shown. The message
// cache key for that conversation is registered on first selection.
func (i *Inbox) Select(ctx context.Context, userID int) {
	conv, _ := i.conversationFor(ctx, userID)

	i.mu.Lock()
	i.selectedUserID = userID
	if conv != nil {
		i.activeConvID = conv.Conversation.ID
	} else {
		i.activeConvID = 0
	}
	convID := i.activeConvID
	i.mu.Unlock()

	if convID != 0 {
		i.registerMessagesKey(convID)
	}
}

// SelectConversation resolves a conversation id (typically from the route
// parameter) to its other party and selects it.
func (i *Inbox) SelectConversation(ctx context.Context, conversationID int) bool {
	entries, err := i.Conversations(ctx)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Conversation.ID == conversationID {
			i.Select(ctx, e.OtherUser.ID)
			return true
		}
	}
	return false
}

// SelectedUserID returns the current other-party selection, zero when none.
func (i *Inbox) SelectedUserID() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.selectedUserID
}

// ActiveConversationID returns the selected conversation id, zero when none.
func (i *Inbox) ActiveConversationID() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.activeConvID
}

// State returns the send pipeline phase.
func (i *Inbox) State() SendState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sendState
}

func (i *Inbox) registerMessagesKey(conversationID int) {
	key := MessagesKey(conversationID)
	if i.store.Registered(key) {
		return
	}
	i.store.Register(key, 0, func(ctx context.Context) (string, error) {
		entries, err := i.api.Messages(ctx, conversationID)
		if err != nil {
			return "", err
		}
		raw, err := json.Marshal(entries)
		return string(raw), err
	})
}

// Conversations reads the cached conversation list, triggering a refetch on
// a cold cache.
func (i *Inbox) Conversations(ctx context.Context) ([]models.ConversationEntry, error) {
	raw, err := i.store.Get(ctx, ConversationsKey)
	if err != nil {
		return nil, err
	}
	var entries []models.ConversationEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.Wrap(err, "decode cached conversations")
	}
	return entries, nil
}

// Messages reads the active conversation's cached messages.
func (i *Inbox) Messages(ctx context.Context) ([]models.MessageEntry, error) {
	i.mu.Lock()
	convID := i.activeConvID
	i.mu.Unlock()
	if convID == 0 {
		return nil, nil
	}
	i.registerMessagesKey(convID)

	raw, err := i.store.Get(ctx, MessagesKey(convID))
	if err != nil {
		return nil, err
	}
	var entries []models.MessageEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.Wrap(err, "decode cached messages")
	}
	return entries, nil
}

func (i *Inbox) conversationFor(ctx context.Context, userID int) (*models.ConversationEntry, error) {
	entries, err := i.Conversations(ctx)
	if err != nil {
		return nil, err
	}
	for idx := range entries {
		if entries[idx].OtherUser.ID == userID {
			return &entries[idx], nil
		}
	}
	return nil, ErrNoConversation
}
