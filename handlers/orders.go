package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/middleware"
	"marketplace/models"
	"marketplace/services"
)

type PlaceOrderRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Location  string `json:"location"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// PlaceOrder creates an order for the calling customer
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	order, err := h.orders.Create(c.Request.Context(), middleware.GetCaller(c), services.CreateOrderInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Location:  req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

// UpdateOrderStatus advances an order one step along its lifecycle
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	order, err := h.orders.AdvanceStatus(c.Request.Context(), middleware.GetCaller(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated to " + string(order.Status), "order": order})
}

// CancelOrder deletes a pending order placed by the caller
func (h *Handler) CancelOrder(c *gin.Context) {
	if err := h.orders.Cancel(c.Request.Context(), middleware.GetCaller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// CustomerOrders pages through the caller's open orders; ?all=true includes delivered ones
func (h *Handler) CustomerOrders(c *gin.Context) {
	includeDelivered := c.Query("all") == "true"
	page, err := h.orders.ListForCustomer(c.Request.Context(), middleware.GetCaller(c), c.Param("id"), includeDelivered, pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// PendingOrders is the delivery partner's work queue
func (h *Handler) PendingOrders(c *gin.Context) {
	orders, err := h.orders.PendingFor(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// OrderHistory pages through delivered orders on the caller's side
func (h *Handler) OrderHistory(c *gin.Context) {
	page, err := h.orders.History(c.Request.Context(), middleware.GetCaller(c), c.Param("userId"), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// OrderTimeline returns the status audit trail of one order
func (h *Handler) OrderTimeline(c *gin.Context) {
	orderID := c.Param("id")
	history, err := h.orders.Timeline(c.Request.Context(), middleware.GetCaller(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "timeline": history})
}
