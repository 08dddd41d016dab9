package ports

import "github.com/Gunvolt24/voltcart/internal/domain"

// TokenVerifier — проверка bearer-токена; невалидный токен — domain.ErrUnauthenticated.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}
