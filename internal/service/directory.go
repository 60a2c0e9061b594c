package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/models"
)

// ConversationStore is the persistence the directory and message log need.
type ConversationStore interface {
	Upsert(ctx context.Context, userA, userB string) (*models.Conversation, bool, error)
	Get(ctx context.Context, id string) (*models.Conversation, error)
	ListForUser(ctx context.Context, uid string) ([]models.Conversation, error)
	ClaimSeq(ctx context.Context, id string) (int64, error)
	RefreshLastMessage(ctx context.Context, id string, last *models.Message) error
}

// UnreadReader exposes the per-viewer unread counters for list hydration.
type UnreadReader interface {
	UnreadCounts(ctx context.Context, uid string) (map[string]int64, error)
}

// DirectoryService maps user pairs to conversations.
type DirectoryService struct {
	convs  ConversationStore
	users  UserStore
	unread UnreadReader
	events *events.Publisher
	log    *zap.Logger
}

func NewDirectoryService(convs ConversationStore, users UserStore, unread UnreadReader, pub *events.Publisher, log *zap.Logger) *DirectoryService {
	return &DirectoryService{convs: convs, users: users, unread: unread, events: pub, log: log}
}

// EnsureConversation returns the conversation between caller and peer,
// creating it on first contact. Idempotent: any number of concurrent calls
// for the same pair land on the same record.
func (s *DirectoryService) EnsureConversation(ctx context.Context, caller, peer string) (*models.Conversation, error) {
	if caller == "" || peer == "" || caller == peer {
		return nil, apperr.ErrBadRequest
	}
	if _, err := s.users.GetByUID(ctx, peer); err != nil {
		return nil, err
	}
	conv, created, err := s.convs.Upsert(ctx, caller, peer)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("conversation created", zap.String("id", conv.ID))
		s.events.ConversationCreated(ctx, conv)
	}
	return conv, nil
}

// ListConversationsFor returns the caller's conversations newest-activity
// first, hydrated with their unread counters. Counter hydration is
// best-effort: a counter-store outage degrades to zero counts rather than
// failing the list.
func (s *DirectoryService) ListConversationsFor(ctx context.Context, uid string) ([]models.ConversationView, error) {
	convs, err := s.convs.ListForUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	counts, err := s.unread.UnreadCounts(ctx, uid)
	if err != nil {
		s.log.Warn("unread counters unavailable", zap.String("uid", uid), zap.Error(err))
		counts = nil
	}

	views := make([]models.ConversationView, 0, len(convs))
	for _, c := range convs {
		views = append(views, models.ConversationView{
			Conversation: c,
			UnreadCount:  counts[c.ID],
			PeerID:       c.Peer(uid),
		})
	}
	return views, nil
}

// GetConversation fetches one conversation, restricted to its participants.
func (s *DirectoryService) GetConversation(ctx context.Context, id, caller string) (*models.Conversation, error) {
	conv, err := s.convs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(caller) {
		return nil, apperr.ErrUnauthorized
	}
	return conv, nil
}
