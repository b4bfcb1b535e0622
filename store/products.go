package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"marketplace/models"
)

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(product).Error, "creating product")
}

func (s *Store) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Product")
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return errors.Wrap(s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error, "deleting product")
}

// ListProducts returns one page of products, newest first, plus the total
// count. An empty owner lists the whole catalog.
func (s *Store) ListProducts(ctx context.Context, owner string, page Page) ([]models.Product, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if owner != "" {
		q = q.Where("created_by = ?", owner)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "counting products")
	}

	products := []models.Product{}
	if err := page.apply(q.Order("created_at desc")).Find(&products).Error; err != nil {
		return nil, 0, errors.Wrap(err, "listing products")
	}
	return products, total, nil
}

// Categories returns every distinct non-empty category in the catalog
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("category <> ?", "").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	return categories, errors.Wrap(err, "listing categories")
}

func (s *Store) ProductsInCategories(ctx context.Context, categories []string, limit int) ([]models.Product, error) {
	products := []models.Product{}
	if len(categories) == 0 {
		return products, nil
	}
	err := s.db.WithContext(ctx).
		Where("category IN ?", categories).
		Order("created_at desc").
		Limit(limit).
		Find(&products).Error
	return products, errors.Wrap(err, "listing products by category")
}
