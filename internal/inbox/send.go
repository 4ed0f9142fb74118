package inbox

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Send runs the send pipeline for the current draft: socket first, REST
// fallback when the socket cannot dispatch. An empty or whitespace-only
// draft performs no network call at all. On success both caches are
// invalidated and the caller clears its draft; on failure the caller keeps
// the draft for a manual retry (there is no automatic one).
func (i *Inbox) Send(ctx context.Context, draft string) error {
	content := strings.TrimSpace(draft)
	if content == "" {
		return nil
	}

	i.mu.Lock()
	if i.sendState == SendSending {
		i.mu.Unlock()
		return errors.New("a send is already in progress")
	}
	recipient := i.selectedUserID
	if recipient == 0 {
		i.mu.Unlock()
		return errors.New("no recipient selected")
	}
	i.sendState = SendSending
	i.mu.Unlock()

	err := i.deliver(ctx, recipient, draft)

	i.mu.Lock()
	if err != nil {
		i.sendState = SendFailed
	} else {
		i.sendState = SendSent
	}
	active := i.activeConvID
	i.mu.Unlock()

	if err != nil {
		i.notify(Notice{Title: "Error", Body: err.Error(), Error: true})
		return err
	}

	keys := []string{ConversationsKey}
	if active != 0 {
		keys = append(keys, MessagesKey(active))
	}
	i.store.Invalidate(ctx, keys...)
	return nil
}

// deliver tries the socket and falls back to REST. The original draft is
// sent untrimmed; trimming only gates the empty check.
func (i *Inbox) deliver(ctx context.Context, recipient int, draft string) error {
	if i.sock.Connected() && i.sock.Send(recipient, draft) {
		jww.DEBUG.Printf("inbox: dispatched to user %d over socket", recipient)
		return nil
	}

	conv, err := i.conversationFor(ctx, recipient)
	if err != nil {
		// Without a conversation id resolved locally there is no endpoint
		// to post to.
		return err
	}
	if _, err := i.api.SendMessage(ctx, conv.Conversation.ID, draft); err != nil {
		return err
	}
	jww.DEBUG.Printf("inbox: dispatched to conversation %d over REST", conv.Conversation.ID)
	return nil
}
