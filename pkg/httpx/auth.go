package httpx

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/ctxmeta"
)

// Коды ошибок аутентификации в теле ответа.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
)

// BearerToken — токен из заголовка Authorization ("" — нет или не Bearer).
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// BearerAuth:
// - проверяет Authorization: Bearer <token>
// - кладёт владельца запроса в контекст
// - без валидного токена отвечает 401
func BearerAuth(verifier ports.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := verifier.Verify(BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": CodeUnauthenticated})
			return
		}
		c.Request = c.Request.WithContext(ctxmeta.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireAdmin — только для администраторов; ставится после BearerAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ctxmeta.IdentityFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": CodeUnauthenticated})
			return
		}
		if !id.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required", "code": CodeForbidden})
			return
		}
		c.Next()
	}
}
