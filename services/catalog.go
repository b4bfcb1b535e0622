package services

import (
	"context"
	"strings"

	"marketplace/apperror"
	"marketplace/models"
)

type Catalog struct {
	products ProductStore
	pageSize int
}

func NewCatalog(products ProductStore, pageSize int) *Catalog {
	return &Catalog{products: products, pageSize: pageSize}
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Total      int64            `json:"total"`
}

// List shows a customer the whole catalog and a delivery partner only
// their own products.
func (c *Catalog) List(ctx context.Context, caller Caller, page int) (*ProductPage, error) {
	owner := ""
	if caller.Role == models.RoleDelivery {
		owner = caller.ID
	}
	return c.list(ctx, owner, page)
}

func (c *Catalog) list(ctx context.Context, owner string, page int) (*ProductPage, error) {
	page, w, err := window(page, c.pageSize)
	if err != nil {
		return nil, err
	}
	products, total, err := c.products.ListProducts(ctx, owner, w)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Page: page, TotalPages: totalPages(total, c.pageSize), Total: total}, nil
}

type CreateProductInput struct {
	Name     string
	Price    float64
	Category string
}

// Create adds a product owned by caller and returns the first page of the
// caller's products.
func (c *Catalog) Create(ctx context.Context, caller Caller, in CreateProductInput) (*ProductPage, error) {
	if caller.Role != models.RoleDelivery {
		return nil, apperror.New(apperror.Forbidden, "Only delivery partners can add products")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == 0 {
		return nil, apperror.New(apperror.Validation, "Missing fields")
	}
	if in.Price < 0 {
		return nil, apperror.New(apperror.Validation, "Price must be positive")
	}

	product := &models.Product{
		Name:      name,
		Price:     in.Price,
		Category:  strings.TrimSpace(in.Category),
		CreatedBy: caller.ID,
	}
	if err := c.products.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return c.list(ctx, caller.ID, 1)
}

// Delete removes one of caller's products and returns what remains
func (c *Catalog) Delete(ctx context.Context, caller Caller, productID string) (*ProductPage, error) {
	if productID == "" {
		return nil, apperror.New(apperror.Validation, "Product ID is required")
	}
	product, err := c.products.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.CreatedBy != caller.ID {
		return nil, apperror.New(apperror.Forbidden, "Forbidden")
	}
	if err := c.products.DeleteProduct(ctx, productID); err != nil {
		return nil, err
	}
	return c.list(ctx, caller.ID, 1)
}
