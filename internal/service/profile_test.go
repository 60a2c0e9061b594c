package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/models"
)

func strptr(s string) *string { return &s }

func newProfileFixture(t *testing.T) (*ProfileService, *memUsers, *memPresence) {
	t.Helper()
	users := newMemUsers()
	registerPair(t, users, "uid-1")
	pres := newMemPresence()
	pub := events.NewPublisher(nil, nil, nil, zap.NewNop())
	return NewProfileService(users, pres, pub, zap.NewNop()), users, pres
}

func TestUpdateProfile_RecomputesDisplayName(t *testing.T) {
	svc, users, _ := newProfileFixture(t)
	ctx := context.Background()

	u, err := svc.UpdateProfile(ctx, "uid-1", models.ProfilePatch{
		FirstName: strptr("Grace"),
		LastName:  strptr("Hopper"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", u.Name)

	// A single name part still triggers the recompute.
	u, err = svc.UpdateProfile(ctx, "uid-1", models.ProfilePatch{LastName: strptr("Murray")})
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.FirstName)
	assert.Equal(t, "Grace Murray", u.Name)

	stored, err := users.GetByUID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Grace Murray", stored.Name)
}

func TestUpdateProfile_UntouchedFieldsSurvive(t *testing.T) {
	svc, users, _ := newProfileFixture(t)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, "uid-1", models.ProfilePatch{Phone: strptr("+1555")})
	require.NoError(t, err)

	stored, err := users.GetByUID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "+1555", stored.Phone)
	assert.Equal(t, "uid-1", stored.FirstName, "name parts untouched by a phone-only patch")
}

func TestUpdateProfile_EmptyPatchIsNoop(t *testing.T) {
	svc, _, _ := newProfileFixture(t)
	u, err := svc.UpdateProfile(context.Background(), "uid-1", models.ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", u.UID)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	svc, _, _ := newProfileFixture(t)
	_, err := svc.UpdateProfile(context.Background(), "ghost", models.ProfilePatch{Phone: strptr("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetPresence(t *testing.T) {
	svc, users, pres := newProfileFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SetPresence(ctx, "uid-1", models.StatusOnline))
	info, err := pres.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, info.Status)

	stored, err := users.GetByUID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, stored.Status)

	require.NoError(t, svc.SetPresence(ctx, "uid-1", models.StatusOffline))
	info, err = pres.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, info.Status)

	assert.ErrorIs(t, svc.SetPresence(ctx, "uid-1", "away"), apperr.ErrBadRequest)
}

func TestGetPresence_DefaultsOffline(t *testing.T) {
	svc, _, _ := newProfileFixture(t)
	info, err := svc.GetPresence(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, info.Status)
}
