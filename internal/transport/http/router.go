package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/httpx"
)

// NewRouter — маршруты API. otelServiceName == "" отключает otelgin.
func NewRouter(h *Handler, verifier ports.TokenVerifier, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	// productId может содержать '/', клиент шлёт его как %2F
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestLogger(h.log))

	r.NoRoute(func(c *gin.Context) { abort(c, http.StatusNotFound, "route not found", CodeNotFound) })
	r.NoMethod(func(c *gin.Context) { abort(c, http.StatusMethodNotAllowed, "method not allowed", CodeBadRequest) })

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/", httpx.BearerAuth(verifier))
	{
		api.GET("/cart", h.getCart)
		api.POST("/cart", h.addItem)
		api.DELETE("/cart", h.clearCart)
		api.PUT("/cart/:productId", h.updateQuantity)
		api.DELETE("/cart/:productId", h.removeItem)

		api.POST("/orders", h.placeOrder)
		api.GET("/orders", h.listMyOrders)
		api.GET("/orders/:id", h.getOrder)
	}

	admin := api.Group("/admin", httpx.RequireAdmin())
	{
		admin.GET("/orders", h.listAllOrders)
		admin.PATCH("/orders/:id/status", h.updateStatus)
	}

	return r
}
