package ws

import "encoding/json"

// FrameType identifies an inbound or outbound socket frame.
type FrameType string

const (
	// Server -> client
	TypeMessage     FrameType = "message"      // new chat message, triggers cache invalidation
	TypeError       FrameType = "error"        // server-side failure, surfaced as a notification
	TypeConnected   FrameType = "connected"    // handshake acknowledgment carrying the user id
	TypeMessageSent FrameType = "message_sent" // send confirmation, advisory only

	// Client -> server
	TypeSend FrameType = "message" // outbound chat message
)

// Frame is the platform's flat JSON socket frame. Fields beyond Type are
// populated per kind.
type Frame struct {
	Type           FrameType `json:"type"`
	Message        string    `json:"message,omitempty"`        // error detail
	UserID         int       `json:"userId,omitempty"`         // connected ack
	SenderID       int       `json:"senderId,omitempty"`       // message
	RecipientID    int       `json:"recipientId,omitempty"`    // outbound send
	ConversationID int       `json:"conversationId,omitempty"` // message
	Content        string    `json:"content,omitempty"`
}

// Encode marshals a frame for the wire.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFrame parses an inbound frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}
