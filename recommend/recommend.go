// Package recommend suggests products from categories related to what a
// customer has already bought. A language model picks the categories; the
// catalog supplies the products.
package recommend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"marketplace/apperror"
	"marketplace/models"
	"marketplace/services"
	"marketplace/store"
)

const (
	maxCategories = 5
	maxProducts   = 5
)

// Model completes a single prompt
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Catalog interface {
	ListOrders(ctx context.Context, filter store.OrderFilter, page store.Page) ([]models.Order, int64, error)
	Categories(ctx context.Context) ([]string, error)
	ProductsInCategories(ctx context.Context, categories []string, limit int) ([]models.Product, error)
}

type Service struct {
	catalog Catalog
	model   Model
}

func NewService(catalog Catalog, model Model) *Service {
	return &Service{catalog: catalog, model: model}
}

// Recommend returns up to five products for customerID. Only the customer
// themself may ask.
func (s *Service) Recommend(ctx context.Context, caller services.Caller, customerID string) ([]models.Product, error) {
	if caller.ID != customerID {
		return nil, apperror.New(apperror.Unauthorized, "Unauthorized")
	}

	orders, _, err := s.catalog.ListOrders(ctx, store.OrderFilter{CustomerID: customerID}, store.Page{})
	if err != nil {
		return nil, err
	}
	purchased := purchasedCategories(orders)
	if len(purchased) == 0 {
		return nil, apperror.New(apperror.NotFound, "No purchase history found")
	}

	available, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, apperror.New(apperror.NotFound, "No categories found in the product database")
	}

	answer, err := s.model.Complete(ctx, buildPrompt(purchased, available))
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "querying recommendation model", err)
	}
	answer = stripReasoning(answer)
	if answer == "" {
		return nil, apperror.New(apperror.NotFound, "No recommendations found")
	}

	suggested := matchCategories(answer, available)
	if len(suggested) == 0 {
		return nil, apperror.New(apperror.NotFound, "No matching recommendations found")
	}
	return s.catalog.ProductsInCategories(ctx, suggested, maxProducts)
}

func purchasedCategories(orders []models.Order) []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range orders {
		if o.Product == nil {
			continue
		}
		cat := strings.TrimSpace(o.Product.Category)
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

func buildPrompt(purchased, available []string) string {
	return fmt.Sprintf("A customer has purchased products from these categories: %s. "+
		"Here are all available product categories in our store: %s. "+
		"Based strictly on the customer's purchase history, suggest 3-5 similar or complementary product "+
		"categories from the available categories. Respond only with a comma-separated list of categories, nothing else.",
		strings.Join(purchased, ", "), strings.Join(available, ", "))
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripReasoning drops the <think> preamble reasoning models emit
func stripReasoning(answer string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(answer, ""))
}

// matchCategories keeps the available categories the answer mentions, in
// catalog order, at most five.
func matchCategories(answer string, available []string) []string {
	lower := strings.ToLower(answer)
	var out []string
	for _, cat := range available {
		if strings.Contains(lower, strings.ToLower(cat)) {
			out = append(out, cat)
			if len(out) == maxCategories {
				break
			}
		}
	}
	return out
}
