package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/models"
)

// MessageStore is the persistence behind the append-only message log.
type MessageStore interface {
	Insert(ctx context.Context, msg *models.Message) error
	Get(ctx context.Context, id string) (*models.Message, error)
	ListOrdered(ctx context.Context, conversationID string) ([]models.Message, error)
	AdvanceStatus(ctx context.Context, id, target string) (*models.Message, bool, error)
	AdvanceConversationRead(ctx context.Context, conversationID, reader string) ([]string, error)
}

// UnreadCounter tracks per-viewer unread counts.
type UnreadCounter interface {
	IncrUnread(ctx context.Context, uid, conversationID string) error
	ClearUnread(ctx context.Context, uid, conversationID string) error
}

// MessageLogService owns the per-conversation append-only message sequence
// and its delivery-status lifecycle.
type MessageLogService struct {
	convs  ConversationStore
	msgs   MessageStore
	unread UnreadCounter
	events *events.Publisher
	log    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewMessageLogService(convs ConversationStore, msgs MessageStore, unread UnreadCounter, pub *events.Publisher, log *zap.Logger) *MessageLogService {
	return &MessageLogService{
		convs:  convs,
		msgs:   msgs,
		unread: unread,
		events: pub,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Append creates a message with a server-assigned ordering token and status
// "sent", appends it to the conversation and refreshes the cached last
// message. An unknown conversation fails with ErrConversationNotFound before
// anything is written.
func (s *MessageLogService) Append(ctx context.Context, conversationID, sender, content, kind string) (*models.Message, error) {
	if content == "" || (kind != models.MessageText && kind != models.MessageImage) {
		return nil, apperr.ErrBadRequest
	}

	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(sender) {
		return nil, apperr.ErrUnauthorized
	}

	// Claiming the sequence number proves the conversation still exists and
	// gives the message its place in the total order.
	seq, err := s.convs.ClaimSeq(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:             s.newID(),
		ConversationID: conversationID,
		SenderID:       sender,
		Text:           content,
		Type:           kind,
		Seq:            seq,
		Timestamp:      s.now().UTC(),
		Status:         models.StatusSent,
	}
	if err := s.msgs.Insert(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.convs.RefreshLastMessage(ctx, conversationID, msg); err != nil {
		s.log.Warn("last message cache refresh failed", zap.String("conversation", conversationID), zap.Error(err))
	}

	recipient := conv.Peer(sender)
	if recipient != "" {
		if err := s.unread.IncrUnread(ctx, recipient, conversationID); err != nil {
			s.log.Warn("unread increment failed", zap.String("uid", recipient), zap.Error(err))
		}
	}
	s.events.MessageSent(ctx, msg, recipient)
	return msg, nil
}

// AdvanceStatus moves a message's delivery status forward only; asking for a
// status at or below the current one is a silent no-op. Restricted to the
// message's conversation participants.
func (s *MessageLogService) AdvanceStatus(ctx context.Context, messageID, caller, target string) (*models.Message, error) {
	if !models.ValidStatus(target) {
		return nil, apperr.ErrBadRequest
	}
	cur, err := s.msgs.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	conv, err := s.convs.Get(ctx, cur.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(caller) {
		return nil, apperr.ErrUnauthorized
	}
	msg, changed, err := s.msgs.AdvanceStatus(ctx, messageID, target)
	if err != nil {
		return nil, err
	}
	if changed {
		s.events.MessageStatus(ctx, msg)
	}
	return msg, nil
}

// MarkConversationRead advances everything the reader received to "read" and
// clears their unread counter for the conversation.
func (s *MessageLogService) MarkConversationRead(ctx context.Context, conversationID, reader string) ([]string, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(reader) {
		return nil, apperr.ErrUnauthorized
	}

	ids, err := s.msgs.AdvanceConversationRead(ctx, conversationID, reader)
	if err != nil {
		return nil, err
	}
	if err := s.unread.ClearUnread(ctx, reader, conversationID); err != nil {
		s.log.Warn("unread clear failed", zap.String("uid", reader), zap.Error(err))
	}
	if len(ids) > 0 {
		s.events.MessagesRead(ctx, conversationID, reader, ids)
	}
	return ids, nil
}

// OrderedView returns the conversation's messages in total order: ascending
// timestamp, append order on ties.
func (s *MessageLogService) OrderedView(ctx context.Context, conversationID, caller string) ([]models.Message, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(caller) {
		return nil, apperr.ErrUnauthorized
	}
	msgs, err := s.msgs.ListOrdered(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	// The store already sorts; keep the invariant even for stores that do not.
	models.SortMessages(msgs)
	return msgs, nil
}
