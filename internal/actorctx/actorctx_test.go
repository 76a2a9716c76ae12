package actorctx_test

import (
	"context"
	"testing"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := actorctx.WithActor(context.Background(), actorctx.Actor{UserID: "u-1", Role: user.RoleAdmin})

	id, ok := actorctx.UserIDFrom(ctx)
	if !ok || id != "u-1" {
		t.Fatalf("got %q, %v", id, ok)
	}

	a, _ := actorctx.From(ctx)
	if a.Role != user.RoleAdmin {
		t.Fatalf("got role %s", a.Role)
	}
}

func TestMissingActor(t *testing.T) {
	if _, ok := actorctx.UserIDFrom(context.Background()); ok {
		t.Fatal("expected no actor on a bare context")
	}

	ctx := actorctx.WithActor(context.Background(), actorctx.Actor{})
	if _, ok := actorctx.From(ctx); ok {
		t.Fatal("an actor without a user id should not count")
	}
}
