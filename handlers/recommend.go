package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/middleware"
)

// Recommend suggests products related to the caller's purchases
func (h *Handler) Recommend(c *gin.Context) {
	products, err := h.recommender.Recommend(c.Request.Context(), middleware.GetCaller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendedProducts": products})
}
