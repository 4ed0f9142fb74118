package inbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilingua-nb/bilingua-client/internal/cache"
	"github.com/bilingua-nb/bilingua-client/internal/models"
	"github.com/bilingua-nb/bilingua-client/internal/ws"
)

type fakeSocket struct {
	mu        sync.Mutex
	connected bool
	accept    bool
	sent      []string
}

func (s *fakeSocket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *fakeSocket) Send(recipientID int, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept {
		return false
	}
	s.sent = append(s.sent, content)
	return true
}

func (s *fakeSocket) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeAPI struct {
	mu           sync.Mutex
	convs        []models.ConversationEntry
	msgs         map[int][]models.MessageEntry
	sendCalls    []int
	sendErr      error
	translated   string
	translateErr error
	translates   int
}

func (f *fakeAPI) Conversations(context.Context) ([]models.ConversationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.convs, nil
}

func (f *fakeAPI) Messages(_ context.Context, conversationID int) ([]models.MessageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[conversationID], nil
}

func (f *fakeAPI) SendMessage(_ context.Context, conversationID int, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls = append(f.sendCalls, conversationID)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &models.Message{ID: 99, Content: content}, nil
}

func (f *fakeAPI) Translate(context.Context, int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translates++
	if f.translateErr != nil {
		return "", f.translateErr
	}
	return f.translated, nil
}

func (f *fakeAPI) sendCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sendCalls)
}

func (f *fakeAPI) translateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.translates
}

func conversationWith(convID, userID int, username string) models.ConversationEntry {
	return models.ConversationEntry{
		Conversation: models.Conversation{ID: convID},
		OtherUser:    models.UserRef{ID: userID, Username: username},
	}
}

func newTestInbox(t *testing.T, api *fakeAPI, sock *fakeSocket) (*Inbox, *cache.Store, *[]Notice) {
	t.Helper()
	store := cache.NewStore(cache.NewMemory())
	var mu sync.Mutex
	notices := &[]Notice{}
	i := New(api, sock, store, func(n Notice) {
		mu.Lock()
		*notices = append(*notices, n)
		mu.Unlock()
	})
	return i, store, notices
}

func warm(t *testing.T, store *cache.Store, key string) {
	t.Helper()
	require.NoError(t, store.Refresh(context.Background(), key))
}

func TestStartIsIdempotent(t *testing.T) {
	api := &fakeAPI{}
	i, _, _ := newTestInbox(t, api, &fakeSocket{})
	conn := ws.NewConn("ws://127.0.0.1:1/ws")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A dead socket must not block the sync loop; the listener attaches for
	// whenever a dial eventually succeeds.
	i.Start(ctx, conn)
	assert.True(t, i.Started())

	// Re-login and reconnect paths call Start again; the second call must not
	// stack another poller.
	i.Start(ctx, conn)
	assert.True(t, i.Started())

	cancel()
	assert.Eventually(t, func() bool { return !i.Started() },
		time.Second, 10*time.Millisecond, "cancelling the context must stop the sync loop")
}

func TestSendEmptyDraftSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	sock := &fakeSocket{connected: true, accept: true}
	i, _, _ := newTestInbox(t, api, sock)

	require.NoError(t, i.Send(context.Background(), "   \n\t "))
	assert.Zero(t, sock.sentCount())
	assert.Zero(t, api.sendCallCount())
	assert.Equal(t, SendIdle, i.State())
}

func TestSendSocketOnlyWhenConnected(t *testing.T) {
	api := &fakeAPI{convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")}}
	sock := &fakeSocket{connected: true, accept: true}
	i, store, _ := newTestInbox(t, api, sock)
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 2)

	require.NoError(t, i.Send(context.Background(), "bonjour"))

	assert.Equal(t, 1, sock.sentCount())
	assert.Zero(t, api.sendCallCount(), "socket dispatch must not also post over REST")
	assert.Equal(t, SendSent, i.State())
}

func TestSendFallsBackToRESTExactlyOnce(t *testing.T) {
	api := &fakeAPI{convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")}}
	sock := &fakeSocket{connected: false}
	i, store, notices := newTestInbox(t, api, sock)
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 2)

	require.NoError(t, i.Send(context.Background(), "bonjour"))

	assert.Equal(t, []int{7}, api.sendCalls, "fallback must post to the resolved conversation id")
	assert.Equal(t, SendSent, i.State())
	assert.Empty(t, *notices, "a successful fallback is not an error")
}

func TestSendFallbackWhenSocketRefusesDispatch(t *testing.T) {
	api := &fakeAPI{convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")}}
	sock := &fakeSocket{connected: true, accept: false}
	i, store, _ := newTestInbox(t, api, sock)
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 2)

	require.NoError(t, i.Send(context.Background(), "bonjour"))
	assert.Equal(t, 1, api.sendCallCount())
}

func TestSendWithoutConversationFails(t *testing.T) {
	api := &fakeAPI{convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")}}
	sock := &fakeSocket{connected: false}
	i, store, notices := newTestInbox(t, api, sock)
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 5) // no conversation with user 5

	err := i.Send(context.Background(), "bonjour")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoConversation)
	assert.Zero(t, api.sendCallCount())
	assert.Equal(t, SendFailed, i.State())
	assert.NotEmpty(t, *notices)
}

func TestSendRESTFailureKeepsDraftSemantics(t *testing.T) {
	api := &fakeAPI{
		convs:   []models.ConversationEntry{conversationWith(7, 2, "amelie")},
		sendErr: assert.AnError,
	}
	sock := &fakeSocket{connected: false}
	i, store, notices := newTestInbox(t, api, sock)
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 2)

	err := i.Send(context.Background(), "bonjour")
	require.Error(t, err)
	assert.Equal(t, SendFailed, i.State())
	require.NotEmpty(t, *notices)
	assert.True(t, (*notices)[0].Error)
}

func TestSendRejectsConcurrentSubmit(t *testing.T) {
	api := &fakeAPI{convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")}}
	sock := &fakeSocket{connected: true, accept: true}
	i, store, _ := newTestInbox(t, api, sock)
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 2)

	i.mu.Lock()
	i.sendState = SendSending
	i.mu.Unlock()

	err := i.Send(context.Background(), "bonjour")
	require.Error(t, err)
	assert.Zero(t, sock.sentCount())
}

func TestSendSuccessInvalidatesCaches(t *testing.T) {
	api := &fakeAPI{
		convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")},
		msgs:  map[int][]models.MessageEntry{7: {}},
	}
	sock := &fakeSocket{connected: true, accept: true}
	i, store, _ := newTestInbox(t, api, sock)
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 2)
	warm(t, store, MessagesKey(7))

	invalidated := make(chan string, 8)
	store.Subscribe("test", func(key string) { invalidated <- key })

	require.NoError(t, i.Send(context.Background(), "bonjour"))

	seen := map[string]bool{}
	timeout := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case key := <-invalidated:
			seen[key] = true
		case <-timeout:
			t.Fatalf("expected both caches invalidated, saw %v", seen)
		}
	}
	assert.True(t, seen[ConversationsKey])
	assert.True(t, seen[MessagesKey(7)])
}

func TestHandleFrameMessageInvalidatesActiveKeys(t *testing.T) {
	api := &fakeAPI{
		convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")},
		msgs:  map[int][]models.MessageEntry{7: {}},
	}
	i, store, _ := newTestInbox(t, api, &fakeSocket{})
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 2)
	warm(t, store, MessagesKey(7))

	invalidated := make(chan string, 8)
	store.Subscribe("test", func(key string) { invalidated <- key })

	i.HandleFrame(ws.Frame{Type: ws.TypeMessage, SenderID: 2, Content: "salut"})

	seen := map[string]bool{}
	timeout := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case key := <-invalidated:
			seen[key] = true
		case <-timeout:
			t.Fatalf("expected both caches invalidated, saw %v", seen)
		}
	}
	assert.True(t, seen[ConversationsKey])
	assert.True(t, seen[MessagesKey(7)])
}

func TestHandleFrameErrorNotifies(t *testing.T) {
	i, _, notices := newTestInbox(t, &fakeAPI{}, &fakeSocket{})

	i.HandleFrame(ws.Frame{Type: ws.TypeError, Message: "boom"})

	require.Len(t, *notices, 1)
	assert.True(t, (*notices)[0].Error)
	assert.Equal(t, "boom", (*notices)[0].Body)
}

func TestSelectResolvesConversation(t *testing.T) {
	api := &fakeAPI{convs: []models.ConversationEntry{
		conversationWith(7, 2, "amelie"),
		conversationWith(9, 3, "bruno"),
	}}
	i, store, _ := newTestInbox(t, api, &fakeSocket{})
	warm(t, store, ConversationsKey)

	i.Select(context.Background(), 3)
	assert.Equal(t, 3, i.SelectedUserID())
	assert.Equal(t, 9, i.ActiveConversationID())

	ok := i.SelectConversation(context.Background(), 7)
	assert.True(t, ok)
	assert.Equal(t, 2, i.SelectedUserID())
	assert.Equal(t, 7, i.ActiveConversationID())

	assert.False(t, i.SelectConversation(context.Background(), 42))
}
