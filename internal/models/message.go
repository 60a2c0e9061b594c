package models

import (
	"sort"
	"time"
)

const (
	MessageText  = "text"
	MessageImage = "image"
)

// Delivery status lifecycle. Transitions only move forward.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	SenderID       string    `bson:"sender_id" json:"sender_id"`
	Text           string    `bson:"text" json:"text"`
	Type           string    `bson:"type" json:"type"`
	Seq            int64     `bson:"seq" json:"seq"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
	Status         string    `bson:"status" json:"status"`
}

// StatusRank orders delivery statuses; unknown statuses rank below sent.
func StatusRank(status string) int {
	switch status {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	default:
		return 0
	}
}

// ValidStatus reports whether s is one of the delivery lifecycle statuses.
func ValidStatus(s string) bool {
	return StatusRank(s) > 0
}

// StatusesBelow lists the statuses ranking strictly under target. Used as the
// match set for conditional status updates so a transition never moves back.
func StatusesBelow(target string) []string {
	var out []string
	for _, s := range []string{StatusSent, StatusDelivered, StatusRead} {
		if StatusRank(s) < StatusRank(target) {
			out = append(out, s)
		}
	}
	return out
}

// SortMessages orders messages ascending by timestamp; equal timestamps fall
// back to seq, which reflects append order, keeping the ordering total.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].Seq < msgs[j].Seq
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
