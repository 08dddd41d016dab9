package httpx

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/voltcart/internal/ports"
)

// RequestLogger — access-лог. Уровень по статусу: 5xx — error, 4xx — warn.
// request_id, user_id и trace_id логгер берёт из контекста сам.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		switch route {
		case "/metrics", "/ping":
			return
		case "":
			route = c.Request.URL.Path
		}

		logf := log.Infof
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logf = log.Errorf
		case status >= http.StatusBadRequest:
			logf = log.Warnf
		}
		logf(c.Request.Context(), "http %s %s status=%d bytes=%d ip=%s took=%s",
			c.Request.Method, route, c.Writer.Status(), c.Writer.Size(), c.ClientIP(), time.Since(start))
	}
}
