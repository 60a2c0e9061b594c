package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/identity"
	"github.com/mahamedadballa/circlechat-server/internal/models"
)

const defaultAvatar = "https://placehold.co/100x100.png"

// UserStore is the persistence the identity and profile services need.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	GetByShortID(ctx context.Context, shortID string) (*models.User, error)
	ShortIDExists(ctx context.Context, shortID string) (bool, error)
	ListOthers(ctx context.Context, uid string) ([]models.User, error)
	UpdateFields(ctx context.Context, uid string, set map[string]any) error
}

// RegisterInput is what the user fills in after the auth provider hands over
// their uid; email and avatar come from the provider itself.
type RegisterInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Avatar    string
}

// IdentityService assigns short IDs and resolves user records.
type IdentityService struct {
	users  UserStore
	gen    *identity.Generator
	events *events.Publisher
	log    *zap.Logger
}

func NewIdentityService(users UserStore, gen *identity.Generator, pub *events.Publisher, log *zap.Logger) *IdentityService {
	return &IdentityService{users: users, gen: gen, events: pub, log: log}
}

// Register creates the user profile for an authenticated uid, assigning a
// fresh short ID. Registering an already-registered uid returns the existing
// record unchanged.
func (s *IdentityService) Register(ctx context.Context, uid string, in RegisterInput) (*models.User, error) {
	if uid == "" {
		return nil, apperr.ErrBadRequest
	}
	if existing, err := s.users.GetByUID(ctx, uid); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	avatar := in.Avatar
	if avatar == "" {
		avatar = defaultAvatar
	}

	// A duplicate-key insert means we either raced another registration for
	// the same uid or drew a short ID that was claimed between the existence
	// check and the write. The first case returns the winner's record, the
	// second draws again.
	for attempt := 0; attempt < 3; attempt++ {
		shortID, err := s.gen.AssignShortID(ctx)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		u := &models.User{
			UID:       uid,
			ShortID:   shortID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Name:      models.DisplayName(in.FirstName, in.LastName),
			Email:     in.Email,
			Phone:     in.Phone,
			Avatar:    avatar,
			Status:    models.StatusOnline,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = s.users.Insert(ctx, u)
		if err == nil {
			s.log.Info("user registered", zap.String("uid", uid), zap.String("short_id", shortID))
			return u, nil
		}
		if !errors.Is(err, apperr.ErrAlreadyRegistered) {
			return nil, err
		}
		if existing, getErr := s.users.GetByUID(ctx, uid); getErr == nil {
			return existing, nil
		}
	}
	return nil, apperr.ErrUnavailable
}

// ResolveUser looks a user up by their stable uid.
func (s *IdentityService) ResolveUser(ctx context.Context, uid string) (*models.User, error) {
	return s.users.GetByUID(ctx, uid)
}

// ResolveByShortID looks a user up by their shareable 9-digit ID.
func (s *IdentityService) ResolveByShortID(ctx context.Context, shortID string) (*models.User, error) {
	return s.users.GetByShortID(ctx, shortID)
}

// Contacts lists every registered user other than the caller.
func (s *IdentityService) Contacts(ctx context.Context, uid string) ([]models.User, error) {
	return s.users.ListOthers(ctx, uid)
}
