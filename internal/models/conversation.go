package models

import "time"

// Conversation is a one-to-one chat between exactly two users. Its identifier
// is derived from the participant pair, so re-initiating contact always lands
// on the same record.
type Conversation struct {
	ID           string    `bson:"_id" json:"id"`
	Participants []string  `bson:"participants" json:"participants"`
	LastMessage  *Message  `bson:"last_message,omitempty" json:"last_message,omitempty"`
	LastSeq      int64     `bson:"last_seq" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// ConversationView is a Conversation enriched with per-viewer fields.
type ConversationView struct {
	Conversation
	UnreadCount int64  `json:"unread_count"`
	PeerID      string `json:"peer_id"`
}

// CanonicalConversationID maps an unordered user pair to its conversation key.
// Symmetric in its arguments: the lexicographically smaller uid always comes
// first. Uids never contain the separator.
func CanonicalConversationID(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + "_" + userB
}

// Peer returns the other participant, or "" when uid is not a participant.
func (c *Conversation) Peer(uid string) string {
	for _, p := range c.Participants {
		if p != uid {
			return p
		}
	}
	return ""
}

// HasParticipant reports whether uid belongs to the conversation.
func (c *Conversation) HasParticipant(uid string) bool {
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}
