package ctxmeta_test

import (
	"context"
	"testing"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/pkg/ctxmeta"
)

func TestIdentity_PutAndGet(t *testing.T) {
	ctx := ctxmeta.WithIdentity(context.Background(), domain.Identity{UserID: "u1", Admin: true})

	id, ok := ctxmeta.IdentityFromContext(ctx)
	if !ok || id.UserID != "u1" || !id.Admin {
		t.Fatalf("unexpected identity %+v ok=%v", id, ok)
	}
}

func TestIdentity_EmptyUserIgnored(t *testing.T) {
	parent := context.Background()
	if ctx := ctxmeta.WithIdentity(parent, domain.Identity{Admin: true}); ctx != parent {
		t.Fatalf("identity without user id must not be stored")
	}
	if _, ok := ctxmeta.IdentityFromContext(parent); ok {
		t.Fatalf("empty context must not carry identity")
	}
}
