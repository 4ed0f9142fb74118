package inbox

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilingua-nb/bilingua-client/internal/cache"
	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// blockingAPI holds translate calls until released, to exercise the in-flight
// dedupe.
type blockingAPI struct {
	fakeAPI
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingAPI) Translate(ctx context.Context, id int) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.fakeAPI.Translate(ctx, id)
}

func messageEntry(id int, content string) models.MessageEntry {
	var e models.MessageEntry
	e.Message = models.Message{ID: id, Content: content, SenderID: 2}
	e.Sender.Username = "amelie"
	return e
}

func setupThread(t *testing.T, api API, sock *fakeSocket) (*Inbox, *cache.Store) {
	t.Helper()
	store := cache.NewStore(cache.NewMemory())
	i := New(api, sock, store, nil)
	warm(t, store, ConversationsKey)
	i.Select(context.Background(), 2)
	warm(t, store, MessagesKey(7))
	return i, store
}

func TestToggleTranslationFetchesOnce(t *testing.T) {
	api := &blockingAPI{
		fakeAPI: fakeAPI{
			convs:      []models.ConversationEntry{conversationWith(7, 2, "amelie")},
			msgs:       map[int][]models.MessageEntry{7: {messageEntry(11, "salut")}},
			translated: "hi",
		},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	i, store := setupThread(t, api, &fakeSocket{})
	ctx := context.Background()

	i.ToggleTranslation(ctx, 11)
	<-api.started
	assert.True(t, i.TranslationShown(11))
	assert.True(t, i.Translating(11))

	// Toggling off and back on while the request is in flight must not start
	// a second request.
	i.ToggleTranslation(ctx, 11)
	i.ToggleTranslation(ctx, 11)

	close(api.release)

	assert.Eventually(t, func() bool { return !i.Translating(11) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, api.translateCount())

	// The cached message carries the translation now.
	raw, err := store.Get(ctx, MessagesKey(7))
	require.NoError(t, err)
	var entries []models.MessageEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "hi", entries[0].Message.TranslatedContent)
}

func TestToggleTranslationSkipsFetchWhenCached(t *testing.T) {
	entry := messageEntry(11, "salut")
	entry.Message.TranslatedContent = "hi"
	api := &fakeAPI{
		convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")},
		msgs:  map[int][]models.MessageEntry{7: {entry}},
	}
	i, _ := setupThread(t, api, &fakeSocket{})

	i.ToggleTranslation(context.Background(), 11)
	assert.True(t, i.TranslationShown(11))

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, api.translateCount(), "a resolved translation is never re-requested")
}

func TestToggleTranslationOffHidesWithoutRefetch(t *testing.T) {
	entry := messageEntry(11, "salut")
	entry.Message.TranslatedContent = "hi"
	api := &fakeAPI{
		convs: []models.ConversationEntry{conversationWith(7, 2, "amelie")},
		msgs:  map[int][]models.MessageEntry{7: {entry}},
	}
	i, _ := setupThread(t, api, &fakeSocket{})
	ctx := context.Background()

	i.ToggleTranslation(ctx, 11)
	i.ToggleTranslation(ctx, 11)
	assert.False(t, i.TranslationShown(11))

	i.ToggleTranslation(ctx, 11)
	assert.True(t, i.TranslationShown(11))
	assert.Zero(t, api.translateCount())
}

func TestTranslationFailureNotifies(t *testing.T) {
	api := &fakeAPI{
		convs:        []models.ConversationEntry{conversationWith(7, 2, "amelie")},
		msgs:         map[int][]models.MessageEntry{7: {messageEntry(11, "salut")}},
		translateErr: assert.AnError,
	}
	store := cache.NewStore(cache.NewMemory())
	var mu sync.Mutex
	var notices []Notice
	i := New(api, &fakeSocket{}, store, func(n Notice) {
		mu.Lock()
		notices = append(notices, n)
		mu.Unlock()
	})
	ctx := context.Background()
	warm(t, store, ConversationsKey)
	i.Select(ctx, 2)
	warm(t, store, MessagesKey(7))

	i.ToggleTranslation(ctx, 11)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(notices) == 1 && notices[0].Error
	}, time.Second, 5*time.Millisecond)
}
