package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/models"
	"github.com/mahamedadballa/circlechat-server/internal/presence"
)

// PresenceStore is the volatile presence backend.
type PresenceStore interface {
	Set(ctx context.Context, uid, status string) error
	Get(ctx context.Context, uid string) (*presence.Info, error)
}

// ProfileService owns the mutable per-user attributes.
type ProfileService struct {
	users    UserStore
	presence PresenceStore
	events   *events.Publisher
	log      *zap.Logger
}

func NewProfileService(users UserStore, pres PresenceStore, pub *events.Publisher, log *zap.Logger) *ProfileService {
	return &ProfileService{users: users, presence: pres, events: pub, log: log}
}

// UpdateProfile applies a partial update. The derived display name is
// recomputed whenever either name part changes.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, patch models.ProfilePatch) (*models.User, error) {
	u, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
		set["first_name"] = u.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
		set["last_name"] = u.LastName
	}
	if patch.FirstName != nil || patch.LastName != nil {
		u.Name = models.DisplayName(u.FirstName, u.LastName)
		set["name"] = u.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
		set["phone"] = u.Phone
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
		set["avatar"] = u.Avatar
	}
	if len(set) == 0 {
		return u, nil
	}

	if err := s.users.UpdateFields(ctx, uid, set); err != nil {
		return nil, err
	}
	s.events.UserUpdated(ctx, u)
	return u, nil
}

// SetPresence flips the user's online/offline flag. It touches nothing else;
// dependents read presence, it is not pushed into them.
func (s *ProfileService) SetPresence(ctx context.Context, uid, status string) error {
	if status != models.StatusOnline && status != models.StatusOffline {
		return apperr.ErrBadRequest
	}
	if err := s.presence.Set(ctx, uid, status); err != nil {
		return err
	}
	// Durable last-known value on the user document; volatile truth in Redis.
	if err := s.users.UpdateFields(ctx, uid, map[string]any{"status": status}); err != nil {
		s.log.Warn("presence field write failed", zap.String("uid", uid), zap.Error(err))
	}
	s.events.PresenceChanged(ctx, uid, status)
	return nil
}

// GetPresence reads the user's presence; absent means offline.
func (s *ProfileService) GetPresence(ctx context.Context, uid string) (*presence.Info, error) {
	return s.presence.Get(ctx, uid)
}
