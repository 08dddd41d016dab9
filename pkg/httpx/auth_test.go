package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports/mocks"
	"github.com/Gunvolt24/voltcart/pkg/ctxmeta"
	"github.com/Gunvolt24/voltcart/pkg/httpx"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	for header, want := range map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
		"Bearer":       "",
	} {
		if got := httpx.BearerToken(header); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func authRouter(t *testing.T, verifier *mocks.MockTokenVerifier, admin bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(httpx.BearerAuth(verifier))
	handler := func(c *gin.Context) {
		id, _ := ctxmeta.IdentityFromContext(c.Request.Context())
		c.String(http.StatusOK, id.UserID)
	}
	if admin {
		r.GET("/", httpx.RequireAdmin(), handler)
	} else {
		r.GET("/", handler)
	}
	return r
}

func TestBearerAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)

	verifier.EXPECT().Verify("good").Return(domain.Identity{UserID: "u1"}, nil)
	verifier.EXPECT().Verify("").Return(domain.Identity{}, domain.ErrUnauthenticated)

	r := authRouter(t, verifier, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "u1" {
		t.Fatalf("want 200 u1, got %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without token, got %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)

	verifier.EXPECT().Verify("user").Return(domain.Identity{UserID: "u1"}, nil)
	verifier.EXPECT().Verify("admin").Return(domain.Identity{UserID: "root", Admin: true}, nil)

	r := authRouter(t, verifier, true)

	for token, want := range map[string]int{"user": http.StatusForbidden, "admin": http.StatusOK} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s: want %d, got %d", token, want, w.Code)
		}
	}
}
