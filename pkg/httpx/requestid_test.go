package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/voltcart/pkg/ctxmeta"
	"github.com/Gunvolt24/voltcart/pkg/httpx"
)

// requestIDProbe — ответ с заголовком и id, который увидел обработчик.
func requestIDProbe(t *testing.T, incoming string) (header, inCtx string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(httpx.RequestIDMiddleware())
	r.GET("/cart", func(c *gin.Context) {
		inCtx, _ = ctxmeta.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart", http.NoBody)
	if incoming != "" {
		req.Header.Set(httpx.HeaderRequestID, incoming)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header().Get(httpx.HeaderRequestID), inCtx
}

func TestRequestID_KeepsClientValue(t *testing.T) {
	header, inCtx := requestIDProbe(t, "checkout-7f3a.2")
	require.Equal(t, "checkout-7f3a.2", header)
	require.Equal(t, header, inCtx)
}

func TestRequestID_GeneratedWhenMissingOrUnsafe(t *testing.T) {
	for name, incoming := range map[string]string{
		"missing":  "",
		"newline":  "abc\nlevel=error",
		"spaces":   "a b",
		"too long": strings.Repeat("x", 65),
	} {
		header, inCtx := requestIDProbe(t, incoming)
		_, err := uuid.Parse(header)
		require.NoError(t, err, name)
		require.Equal(t, header, inCtx, name)
	}
}
