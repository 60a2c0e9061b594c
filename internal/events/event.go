package events

import "time"

// Event types carried on the change feed. Every mutation of users,
// conversations and messages produces exactly one of these.
const (
	TypeConversationCreated = "conversation.created"
	TypeMessageSent         = "message.sent"
	TypeMessageStatus       = "message.status"
	TypeMessageRead         = "message.read"
	TypeUserUpdated         = "user.updated"
	TypePresenceChanged     = "presence.changed"
	TypeTyping              = "typing"
)

type Event struct {
	Type           string    `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	At             time.Time `json:"at"`
	Data           any       `json:"data,omitempty"`
}
