package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/models"
	"github.com/mahamedadballa/circlechat-server/internal/ws"
)

func recvEvent(t *testing.T, sub *ws.Subscription) events.Event {
	t.Helper()
	select {
	case v := <-sub.C:
		ev, ok := v.(events.Event)
		require.True(t, ok, "hub payload is %T, want events.Event", v)
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func assertQuiet(t *testing.T, sub *ws.Subscription) {
	t.Helper()
	select {
	case v := <-sub.C:
		t.Fatalf("unexpected event %v", v)
	default:
	}
}

func TestPublisher_MessageSentRouting(t *testing.T) {
	hub := ws.NewHub()
	pub := events.NewPublisher(hub, nil, nil, zap.NewNop())

	convSub := hub.Subscribe(events.ConversationTopic("alice_bob"))
	bobSub := hub.Subscribe(events.UserTopic("bob"))
	aliceSub := hub.Subscribe(events.UserTopic("alice"))
	defer convSub.Close()
	defer bobSub.Close()
	defer aliceSub.Close()

	msg := &models.Message{ID: "m1", ConversationID: "alice_bob", SenderID: "alice", Text: "hello", Seq: 1}
	pub.MessageSent(context.Background(), msg, "bob")

	for _, sub := range []*ws.Subscription{convSub, bobSub} {
		ev := recvEvent(t, sub)
		assert.Equal(t, events.TypeMessageSent, ev.Type)
		assert.Equal(t, "alice_bob", ev.ConversationID)
		assert.Equal(t, "alice", ev.UserID)
		assert.False(t, ev.At.IsZero())
	}
	// The sender's own user topic is not a delivery target.
	assertQuiet(t, aliceSub)
}

func TestPublisher_ConversationCreatedReachesBothParticipants(t *testing.T) {
	hub := ws.NewHub()
	pub := events.NewPublisher(hub, nil, nil, zap.NewNop())

	aliceSub := hub.Subscribe(events.UserTopic("alice"))
	bobSub := hub.Subscribe(events.UserTopic("bob"))
	otherSub := hub.Subscribe(events.UserTopic("mallory"))
	defer aliceSub.Close()
	defer bobSub.Close()
	defer otherSub.Close()

	conv := &models.Conversation{ID: "alice_bob", Participants: []string{"alice", "bob"}}
	pub.ConversationCreated(context.Background(), conv)

	for _, sub := range []*ws.Subscription{aliceSub, bobSub} {
		ev := recvEvent(t, sub)
		assert.Equal(t, events.TypeConversationCreated, ev.Type)
		assert.Equal(t, "alice_bob", ev.ConversationID)
	}
	assertQuiet(t, otherSub)
}

func TestPublisher_StatusAndReadGoToConversationTopic(t *testing.T) {
	hub := ws.NewHub()
	pub := events.NewPublisher(hub, nil, nil, zap.NewNop())

	convSub := hub.Subscribe(events.ConversationTopic("alice_bob"))
	defer convSub.Close()

	msg := &models.Message{ID: "m1", ConversationID: "alice_bob", Status: models.StatusDelivered}
	pub.MessageStatus(context.Background(), msg)
	ev := recvEvent(t, convSub)
	assert.Equal(t, events.TypeMessageStatus, ev.Type)
	assert.Equal(t, "alice_bob", ev.ConversationID)

	pub.MessagesRead(context.Background(), "alice_bob", "bob", []string{"m1"})
	ev = recvEvent(t, convSub)
	assert.Equal(t, events.TypeMessageRead, ev.Type)
	assert.Equal(t, "bob", ev.UserID)
}

func TestPublisher_UserScopedEvents(t *testing.T) {
	hub := ws.NewHub()
	pub := events.NewPublisher(hub, nil, nil, zap.NewNop())

	userSub := hub.Subscribe(events.UserTopic("alice"))
	defer userSub.Close()

	pub.UserUpdated(context.Background(), &models.User{UID: "alice", Name: "Alice A"})
	ev := recvEvent(t, userSub)
	assert.Equal(t, events.TypeUserUpdated, ev.Type)
	assert.Equal(t, "alice", ev.UserID)

	pub.PresenceChanged(context.Background(), "alice", models.StatusOnline)
	ev = recvEvent(t, userSub)
	assert.Equal(t, events.TypePresenceChanged, ev.Type)
	assert.Equal(t, "alice", ev.UserID)
}

func TestPublisher_TypingGoesToConversationTopic(t *testing.T) {
	hub := ws.NewHub()
	pub := events.NewPublisher(hub, nil, nil, zap.NewNop())

	convSub := hub.Subscribe(events.ConversationTopic("alice_bob"))
	defer convSub.Close()

	pub.Typing(context.Background(), "alice_bob", "alice", true)
	ev := recvEvent(t, convSub)
	assert.Equal(t, events.TypeTyping, ev.Type)
	assert.Equal(t, "alice", ev.UserID)
	assert.Equal(t, map[string]bool{"is_typing": true}, ev.Data)
}
