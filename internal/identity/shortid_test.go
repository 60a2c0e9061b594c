package identity

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
)

var nineDigits = regexp.MustCompile(`^[1-9][0-9]{8}$`)

func existsIn(set map[string]bool) ExistsFunc {
	return func(_ context.Context, id string) (bool, error) {
		return set[id], nil
	}
}

func TestAssignShortID_Format(t *testing.T) {
	g := NewGenerator(existsIn(nil))
	for i := 0; i < 100; i++ {
		id, err := g.AssignShortID(context.Background())
		require.NoError(t, err)
		assert.True(t, nineDigits.MatchString(id), "got %q", id)
	}
}

func TestAssignShortID_NoDuplicatesAcrossSequentialCalls(t *testing.T) {
	taken := map[string]bool{}
	g := NewGenerator(existsIn(taken))
	for i := 0; i < 1000; i++ {
		id, err := g.AssignShortID(context.Background())
		require.NoError(t, err)
		require.False(t, taken[id], "duplicate id %q", id)
		taken[id] = true
	}
}

func TestAssignShortID_RetriesOnCollision(t *testing.T) {
	// Pin the random source so the first two draws collide.
	draws := []int{41, 41, 42}
	i := 0
	intN := func(int) int {
		v := draws[i%len(draws)]
		i++
		return v
	}
	taken := map[string]bool{"100000041": true}
	g := NewGeneratorWithRand(existsIn(taken), intN)

	id, err := g.AssignShortID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100000042", id)
	assert.Equal(t, 3, i, "expected two colliding draws before success")
}

func TestAssignShortID_StoreUnavailable(t *testing.T) {
	g := NewGenerator(func(context.Context, string) (bool, error) {
		return false, errors.New("connection refused")
	})
	_, err := g.AssignShortID(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestAssignShortID_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGenerator(existsIn(map[string]bool{}))
	_, err := g.AssignShortID(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
