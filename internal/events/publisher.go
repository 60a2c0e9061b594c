package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/models"
)

// Broadcaster pushes an event to in-process subscribers. Implemented by the
// websocket hub.
type Broadcaster interface {
	Broadcast(topic string, payload any)
}

// Publisher fans every state change out to the sync feed: the in-process hub
// for connected clients, Kafka for the durable change log, NATS for the
// ephemeral presence/typing channel. Delivery is best-effort; failures are
// logged and never surfaced to the mutation's caller.
type Publisher struct {
	hub   Broadcaster
	kafka *KafkaProducer
	nats  *NATSBroadcaster
	log   *zap.Logger
}

func NewPublisher(hub Broadcaster, kafka *KafkaProducer, nats *NATSBroadcaster, log *zap.Logger) *Publisher {
	return &Publisher{hub: hub, kafka: kafka, nats: nats, log: log}
}

// ConversationTopic is the hub topic carrying a conversation's changes.
func ConversationTopic(conversationID string) string { return "conversation:" + conversationID }

// UserTopic is the hub topic carrying a user's profile/presence changes and
// conversation-level notifications addressed to them.
func UserTopic(uid string) string { return "user:" + uid }

func (p *Publisher) emit(ctx context.Context, ev Event, topics ...string) {
	ev.At = time.Now().UTC()
	if p.hub != nil {
		for _, t := range topics {
			p.hub.Broadcast(t, ev)
		}
	}
	if p.kafka != nil {
		b, err := json.Marshal(ev)
		if err == nil {
			err = p.kafka.Publish(ctx, ev.Type, b)
		}
		if err != nil {
			p.log.Warn("kafka publish failed", zap.String("type", ev.Type), zap.Error(err))
		}
	}
}

func (p *Publisher) ConversationCreated(ctx context.Context, conv *models.Conversation) {
	ev := Event{Type: TypeConversationCreated, ConversationID: conv.ID, Data: conv}
	topics := make([]string, 0, len(conv.Participants))
	for _, uid := range conv.Participants {
		topics = append(topics, UserTopic(uid))
	}
	p.emit(ctx, ev, topics...)
}

func (p *Publisher) MessageSent(ctx context.Context, msg *models.Message, recipient string) {
	ev := Event{Type: TypeMessageSent, ConversationID: msg.ConversationID, UserID: msg.SenderID, Data: msg}
	p.emit(ctx, ev, ConversationTopic(msg.ConversationID), UserTopic(recipient))
}

func (p *Publisher) MessageStatus(ctx context.Context, msg *models.Message) {
	ev := Event{Type: TypeMessageStatus, ConversationID: msg.ConversationID, Data: msg}
	p.emit(ctx, ev, ConversationTopic(msg.ConversationID))
}

func (p *Publisher) MessagesRead(ctx context.Context, conversationID, reader string, messageIDs []string) {
	ev := Event{
		Type:           TypeMessageRead,
		ConversationID: conversationID,
		UserID:         reader,
		Data:           map[string]any{"message_ids": messageIDs},
	}
	p.emit(ctx, ev, ConversationTopic(conversationID))
}

func (p *Publisher) UserUpdated(ctx context.Context, user *models.User) {
	ev := Event{Type: TypeUserUpdated, UserID: user.UID, Data: user}
	p.emit(ctx, ev, UserTopic(user.UID))
}

// PresenceChanged goes over NATS rather than Kafka: every instance relays it
// to its connected clients and nobody needs to replay it later.
func (p *Publisher) PresenceChanged(ctx context.Context, uid, status string) {
	ev := Event{Type: TypePresenceChanged, UserID: uid, At: time.Now().UTC(), Data: map[string]string{"status": status}}
	if p.hub != nil {
		p.hub.Broadcast(UserTopic(uid), ev)
	}
	if p.nats != nil {
		b, _ := json.Marshal(ev)
		if err := p.nats.Publish("chat.presence", b); err != nil {
			p.log.Warn("nats publish failed", zap.String("uid", uid), zap.Error(err))
		}
	}
}

// Typing is fire-and-forget like presence.
func (p *Publisher) Typing(ctx context.Context, conversationID, uid string, isTyping bool) {
	ev := Event{
		Type:           TypeTyping,
		ConversationID: conversationID,
		UserID:         uid,
		At:             time.Now().UTC(),
		Data:           map[string]bool{"is_typing": isTyping},
	}
	if p.hub != nil {
		p.hub.Broadcast(ConversationTopic(conversationID), ev)
	}
	if p.nats != nil {
		b, _ := json.Marshal(ev)
		if err := p.nats.Publish("chat.typing", b); err != nil {
			p.log.Warn("nats publish failed", zap.String("conversation", conversationID), zap.Error(err))
		}
	}
}
