// Package actorctx carries the authenticated caller on a context.Context so
// code below the HTTP layer can see who is acting without importing gin.
package actorctx

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type ctxKey struct{}

type Actor struct {
	UserID string
	Email  string
	Role   user.Role
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func From(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)

	return a, ok && a.UserID != ""
}

func UserIDFrom(ctx context.Context) (string, bool) {
	a, ok := From(ctx)

	return a.UserID, ok
}
