package http

import (
	"context"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
)

type actorKey struct{}

// Actor is the authenticated caller, taken from a validated access token.
type Actor struct {
	ID   uuid.UUID
	Role domain.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.UserRoleAdmin
}

func withActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor injected by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
