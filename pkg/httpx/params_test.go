package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Gunvolt24/voltcart/pkg/httpx"
)

func TestParseLimitOffset(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query             string
		def, max          int
		wantLim, wantOffs int
	}{
		{"", 20, 100, 20, 0},
		{"", 500, 100, 100, 0},
		{"limit=5&offset=40", 20, 100, 5, 40},
		{"limit=0", 20, 100, 1, 0},
		{"limit=-3&offset=-1", 20, 100, 1, 0},
		{"limit=1000", 20, 100, 100, 0},
		{"limit=ten&offset=x", 20, 100, 20, 0},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/orders?"+tt.query, http.NoBody)

		limit, offset := httpx.ParseLimitOffset(c, tt.def, tt.max)
		assert.Equal(t, tt.wantLim, limit, "limit for %q", tt.query)
		assert.Equal(t, tt.wantOffs, offset, "offset for %q", tt.query)
	}
}
