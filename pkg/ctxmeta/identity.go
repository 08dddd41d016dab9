package ctxmeta

import (
	"context"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

const keyIdentity ctxKey = "identity"

// WithIdentity кладёт владельца запроса в контекст.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	if ctx == nil || id.UserID == "" {
		return ctx
	}
	return context.WithValue(ctx, keyIdentity, id)
}

// IdentityFromContext — владелец запроса, если аутентификация пройдена.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	if ctx == nil {
		return domain.Identity{}, false
	}
	id, ok := ctx.Value(keyIdentity).(domain.Identity)
	return id, ok && id.UserID != ""
}
