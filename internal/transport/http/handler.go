package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/ctxmeta"
	"github.com/Gunvolt24/voltcart/pkg/httpx"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

// Коды ошибок в теле ответа {error, code}.
const (
	CodeInvalidProduct  = "invalid_product"
	CodeInvalidQuantity = "invalid_quantity"
	CodeInvalidOrder    = "invalid_order"
	CodeEmptyCart       = "empty_cart"
	CodeNotFound        = "not_found"
	CodeInvalidStatus   = "invalid_status"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler — HTTP-обработчики корзины и заказов.
type Handler struct {
	carts   ports.CartUseCase
	orders  ports.OrderUseCase
	log     ports.Logger
	timeout time.Duration
}

// NewHandler — timeout <= 0 отключает ограничение времени обработки.
func NewHandler(carts ports.CartUseCase, orders ports.OrderUseCase, log ports.Logger, timeout time.Duration) *Handler {
	return &Handler{carts: carts, orders: orders, log: log, timeout: timeout}
}

// reqContext — контекст запроса с таймаутом обработчика.
func (h *Handler) reqContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.timeout)
	}
	return context.WithCancel(c.Request.Context())
}

// identity — владелец запроса; BearerAuth гарантирует его наличие.
func identity(c *gin.Context) (domain.Identity, bool) {
	id, ok := ctxmeta.IdentityFromContext(c.Request.Context())
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required", httpx.CodeUnauthenticated)
	}
	return id, ok
}

func abort(c *gin.Context, status int, msg, code string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

// fail — ошибка сценария в HTTP-статус и код; неизвестные ошибки — 500 с логом.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		abort(c, http.StatusUnauthorized, err.Error(), httpx.CodeUnauthenticated)
	case errors.Is(err, domain.ErrForbidden):
		abort(c, http.StatusForbidden, err.Error(), httpx.CodeForbidden)
	case errors.Is(err, domain.ErrInvalidProduct), errors.Is(err, domain.ErrInvalidReference):
		abort(c, http.StatusBadRequest, err.Error(), CodeInvalidProduct)
	case errors.Is(err, domain.ErrInvalidQuantity):
		abort(c, http.StatusBadRequest, err.Error(), CodeInvalidQuantity)
	case errors.Is(err, validate.ErrInvalidOrder):
		abort(c, http.StatusBadRequest, err.Error(), CodeInvalidOrder)
	case errors.Is(err, domain.ErrEmptyCart):
		abort(c, http.StatusBadRequest, err.Error(), CodeEmptyCart)
	case errors.Is(err, domain.ErrInvalidStatus):
		abort(c, http.StatusBadRequest, err.Error(), CodeInvalidStatus)
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrOrderNotFound):
		abort(c, http.StatusNotFound, err.Error(), CodeNotFound)
	default:
		h.log.Errorf(c.Request.Context(), "%s failed: %v", op, err)
		abort(c, http.StatusInternalServerError, "internal server error", CodeInternal)
	}
}

// itemsBody — позиции корзины; пустая корзина — [] (не null).
func itemsBody(cart *domain.Cart) gin.H {
	items := []domain.CartItem{}
	if cart != nil && cart.Items != nil {
		items = cart.Items
	}
	return gin.H{"items": items}
}
