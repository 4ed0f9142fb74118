package models

import "time"

// Message is a single chat message as returned by the platform. The server
// nests the row under "message" alongside a thin sender reference.
type Message struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	SenderID  int       `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
	// TranslatedContent is empty until a translate request succeeds; once
	// set it is kept for the rest of the session.
	TranslatedContent string `json:"translatedContent,omitempty"`
}

// MessageEntry is the wire shape of GET /api/conversations/:id/messages items.
type MessageEntry struct {
	Message Message `json:"message"`
	Sender  struct {
		Username string `json:"username"`
	} `json:"sender"`
}

// Conversation is a two-party thread summary. Its id is distinct from either
// participant's id.
type Conversation struct {
	ID            int       `json:"id"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// ConversationEntry is the wire shape of GET /api/conversations items.
type ConversationEntry struct {
	Conversation Conversation `json:"conversation"`
	OtherUser    UserRef      `json:"otherUser"`
	LastMessage  *struct {
		Content string `json:"content"`
	} `json:"lastMessage,omitempty"`
}

// UserRef is the minimal other-party reference embedded in summaries.
type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}
