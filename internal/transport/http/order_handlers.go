package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/pkg/httpx"
)

type placeOrderRequest struct {
	ShippingDetails domain.ShippingDetails `json:"shippingDetails"`
	PaymentDetails  domain.PaymentDetails  `json:"paymentDetails"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json body", CodeBadRequest)
		return
	}

	ctx, cancel := h.reqContext(c)
	defer cancel()

	order, err := h.orders.PlaceOrder(ctx, id.UserID, req.ShippingDetails, req.PaymentDetails)
	if err != nil {
		h.fail(c, "PlaceOrder", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"orderId": order.ID, "order": order})
}

func (h *Handler) listMyOrders(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	limit, offset := httpx.ParseLimitOffset(c, defaultLimit, maxLimit)

	ctx, cancel := h.reqContext(c)
	defer cancel()

	orders, err := h.orders.OrdersByUser(ctx, id.UserID, limit, offset)
	if err != nil {
		h.fail(c, "OrdersByUser", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

// getOrder — заказ виден владельцу и администраторам.
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, "GetOrder", err)
		return
	}
	if order.UserID != id.UserID && !id.Admin {
		abort(c, http.StatusForbidden, "order belongs to another user", httpx.CodeForbidden)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listAllOrders(c *gin.Context) {
	limit, offset := httpx.ParseLimitOffset(c, defaultLimit, maxLimit)

	ctx, cancel := h.reqContext(c)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, limit, offset)
	if err != nil {
		h.fail(c, "ListOrders", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json body", CodeBadRequest)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.fail(c, "UpdateStatus", err)
		return
	}

	ctx, cancel := h.reqContext(c)
	defer cancel()

	order, err := h.orders.UpdateStatus(ctx, c.Param("id"), status)
	if err != nil {
		h.fail(c, "UpdateStatus", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func nonNil(orders []*domain.Order) []*domain.Order {
	if orders == nil {
		return []*domain.Order{}
	}
	return orders
}
