package identity

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
)

const (
	shortIDMin  = 100000000
	shortIDSpan = 900000000
)

// ExistsFunc reports whether a short ID is already taken.
type ExistsFunc func(ctx context.Context, shortID string) (bool, error)

// Generator hands out 9-digit public IDs, retrying until it draws one that is
// not taken. The existence check is read-then-check, so the guarantee is
// best-effort; the unique index on the users collection is what makes the
// final insert strict.
type Generator struct {
	exists ExistsFunc
	intN   func(n int) int
}

func NewGenerator(exists ExistsFunc) *Generator {
	return &Generator{exists: exists, intN: rand.Intn}
}

// NewGeneratorWithRand is used by tests to pin the random source.
func NewGeneratorWithRand(exists ExistsFunc, intN func(n int) int) *Generator {
	return &Generator{exists: exists, intN: intN}
}

// AssignShortID draws uniformly from [100000000, 999999999] until the value
// is unused. Fails with ErrUnavailable when the backing store cannot answer.
func (g *Generator) AssignShortID(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id := fmt.Sprintf("%09d", shortIDMin+g.intN(shortIDSpan))
		taken, err := g.exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("%w: short id lookup: %v", apperr.ErrUnavailable, err)
		}
		if !taken {
			return id, nil
		}
	}
}
