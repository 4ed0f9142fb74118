package inbox

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// ToggleTranslation flips the show-translation state of one message. The
// first toggle-on fetches the translation only if the message has none;
// toggling while a request is in flight never starts a second one, and a
// resolved translation is never re-requested for the session. A failed fetch
// surfaces a notification and the toggle reverts implicitly because the
// content never populates.
func (i *Inbox) ToggleTranslation(ctx context.Context, messageID int) {
	i.mu.Lock()
	t := i.translations[messageID]
	if t == nil {
		t = &translation{}
		i.translations[messageID] = t
	}
	t.shown = !t.shown
	needFetch := t.shown && !t.inflight && !i.hasTranslationLocked(ctx, messageID)
	if needFetch {
		t.inflight = true
	}
	convID := i.activeConvID
	i.mu.Unlock()

	if !needFetch {
		return
	}
	go i.fetchTranslation(ctx, convID, messageID)
}

// TranslationShown reports whether the toggle is on for a message.
func (i *Inbox) TranslationShown(messageID int) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	t := i.translations[messageID]
	return t != nil && t.shown
}

// Translating reports whether a translate request is in flight for a message.
func (i *Inbox) Translating(messageID int) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	t := i.translations[messageID]
	return t != nil && t.inflight
}

// hasTranslationLocked checks the cached message for an existing translation.
// Callers hold i.mu; the cache read itself takes no inbox locks.
func (i *Inbox) hasTranslationLocked(ctx context.Context, messageID int) bool {
	convID := i.activeConvID
	if convID == 0 {
		return false
	}
	raw, err := i.store.Get(ctx, MessagesKey(convID))
	if err != nil {
		return false
	}
	var entries []models.MessageEntry
	if json.Unmarshal([]byte(raw), &entries) != nil {
		return false
	}
	for _, e := range entries {
		if e.Message.ID == messageID {
			return e.Message.TranslatedContent != ""
		}
	}
	return false
}

func (i *Inbox) fetchTranslation(ctx context.Context, convID, messageID int) {
	defer func() {
		i.mu.Lock()
		if t := i.translations[messageID]; t != nil {
			t.inflight = false
		}
		i.mu.Unlock()
	}()

	translated, err := i.api.Translate(ctx, messageID)
	if err != nil {
		jww.WARN.Printf("inbox: translate message %d: %v", messageID, err)
		i.notify(Notice{Title: "Translation Error", Body: err.Error(), Error: true})
		return
	}

	// Message-level patch rather than a full invalidation.
	err = i.store.Patch(ctx, MessagesKey(convID), func(raw string) (string, error) {
		var entries []models.MessageEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return "", errors.Wrap(err, "decode cached messages")
		}
		for idx := range entries {
			if entries[idx].Message.ID == messageID {
				entries[idx].Message.TranslatedContent = translated
			}
		}
		next, err := json.Marshal(entries)
		return string(next), err
	})
	if err != nil {
		jww.WARN.Printf("inbox: patch translation for message %d: %v", messageID, err)
	}
}
