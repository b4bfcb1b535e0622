package routes

import (
	"github.com/gin-gonic/gin"

	"marketplace/handlers"
	"marketplace/middleware"
	"marketplace/models"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, verifier middleware.Verifier) {
	r.GET("/health", handlers.Health)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.POST("/auth/refresh", h.Refresh)

		public.GET("/state-machine", handlers.GetStateMachineInfo)

		// authenticates itself from ?token, browsers cannot send headers here
		public.GET("/ws", h.Realtime)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(middleware.AuthRequired(verifier))
	{
		authed.GET("/auth/me", h.Me)
		authed.GET("/products", h.ListProducts)

		authed.DELETE("/orders/:id", h.CancelOrder)
		authed.GET("/orders/:id/timeline", h.OrderTimeline)
		authed.GET("/orders/customer/:id", h.CustomerOrders)
		authed.GET("/orders/history/:userId", h.OrderHistory)

		authed.GET("/recommend/:id", h.Recommend)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api")
	customer.Use(middleware.AuthRequired(verifier), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.PlaceOrder)
	}

	// ── Delivery partner routes ────────────────────────────────────
	delivery := r.Group("/api")
	delivery.Use(middleware.AuthRequired(verifier), middleware.RoleRequired(models.RoleDelivery))
	{
		delivery.POST("/products", h.CreateProduct)
		delivery.DELETE("/products", h.DeleteProduct)

		delivery.GET("/orders/pending", h.PendingOrders)
		delivery.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}
}
