package api

import (
	"context"
	"fmt"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// Conversations lists the caller's conversation summaries.
func (c *Client) Conversations(ctx context.Context) ([]models.ConversationEntry, error) {
	var out []models.ConversationEntry
	if err := c.get(ctx, "/api/conversations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Messages lists the messages of one conversation.
func (c *Client) Messages(ctx context.Context, conversationID int) ([]models.MessageEntry, error) {
	var out []models.MessageEntry
	path := fmt.Sprintf("/api/conversations/%d/messages", conversationID)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts a message over REST. This is the fallback path; the
// primary path is the websocket send.
func (c *Client) SendMessage(ctx context.Context, conversationID int, content string) (*models.Message, error) {
	var out models.Message
	path := fmt.Sprintf("/api/conversations/%d/messages", conversationID)
	body := map[string]string{"content": content}
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Translate requests an on-demand translation of one message.
func (c *Client) Translate(ctx context.Context, messageID int) (string, error) {
	var out struct {
		TranslatedContent string `json:"translatedContent"`
	}
	path := fmt.Sprintf("/api/messages/%d/translate", messageID)
	if err := c.post(ctx, path, nil, &out); err != nil {
		return "", err
	}
	return out.TranslatedContent, nil
}

// ReportMessage files a moderation report against a message.
func (c *Client) ReportMessage(ctx context.Context, messageID int, report models.MessageReport) error {
	path := fmt.Sprintf("/api/messages/%d/report", messageID)
	return c.post(ctx, path, report, nil)
}

// ProposeMeetup sends a meetup proposal to another user.
func (c *Client) ProposeMeetup(ctx context.Context, recipientID int, proposal models.MeetupProposal) error {
	path := fmt.Sprintf("/api/users/%d/meetup-proposals", recipientID)
	return c.post(ctx, path, proposal, nil)
}

// Matches lists suggested partners for the caller.
func (c *Client) Matches(ctx context.Context) ([]models.Match, error) {
	var out []models.Match
	if err := c.get(ctx, "/api/matches", &out); err != nil {
		return nil, err
	}
	return out, nil
}
