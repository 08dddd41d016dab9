package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// itemFromRequest — позиция из тела POST /cart; productId может прийти строкой, числом или объектом.
// Без quantity добавляется одна штука.
func itemFromRequest(raw domain.RawCartItem) (domain.CartItem, error) {
	if raw.Quantity != nil && *raw.Quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: quantity=%d", domain.ErrInvalidQuantity, *raw.Quantity)
	}
	item, err := domain.NormalizeItem(raw)
	if err != nil {
		return domain.CartItem{}, err
	}
	// отрицательную цену не подменяем нулём: её отвергнет валидатор
	if raw.Price != nil {
		item.Price = *raw.Price
	}
	return item, nil
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) getCart(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, id.UserID)
	if err != nil {
		h.fail(c, "GetCart", err)
		return
	}
	c.JSON(http.StatusOK, itemsBody(cart))
}

func (h *Handler) addItem(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var raw domain.RawCartItem
	if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil {
		abort(c, http.StatusBadRequest, "invalid json body", CodeBadRequest)
		return
	}
	item, err := itemFromRequest(raw)
	if err != nil {
		h.fail(c, "AddItem", err)
		return
	}

	ctx, cancel := h.reqContext(c)
	defer cancel()

	cart, err := h.carts.AddItem(ctx, id.UserID, item)
	if err != nil {
		h.fail(c, "AddItem", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": itemsBody(cart)})
}

func (h *Handler) updateQuantity(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json body", CodeBadRequest)
		return
	}
	if req.Quantity == nil {
		abort(c, http.StatusBadRequest, "quantity is required", CodeInvalidQuantity)
		return
	}

	ctx, cancel := h.reqContext(c)
	defer cancel()

	cart, err := h.carts.UpdateQuantity(ctx, id.UserID, c.Param("productId"), *req.Quantity)
	if err != nil {
		h.fail(c, "UpdateQuantity", err)
		return
	}
	c.JSON(http.StatusOK, itemsBody(cart))
}

func (h *Handler) removeItem(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	cart, err := h.carts.RemoveItem(ctx, id.UserID, c.Param("productId"))
	if err != nil {
		h.fail(c, "RemoveItem", err)
		return
	}
	c.JSON(http.StatusOK, itemsBody(cart))
}

func (h *Handler) clearCart(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	if err := h.carts.ClearCart(ctx, id.UserID); err != nil {
		h.fail(c, "ClearCart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
