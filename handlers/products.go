package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace/middleware"
	"marketplace/services"
)

type CreateProductRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

type DeleteProductRequest struct {
	ID string `json:"id"`
}

// pageParam reads ?page, treating anything unparsable as the first page
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ListProducts returns one page of the catalog as the caller may see it
func (h *Handler) ListProducts(c *gin.Context) {
	page, err := h.catalog.List(c.Request.Context(), middleware.GetCaller(c), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateProduct adds a product owned by the calling delivery partner
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	page, err := h.catalog.Create(c.Request.Context(), middleware.GetCaller(c), services.CreateProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, page)
}

// DeleteProduct removes one of the caller's products
func (h *Handler) DeleteProduct(c *gin.Context) {
	var req DeleteProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	page, err := h.catalog.Delete(c.Request.Context(), middleware.GetCaller(c), req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
