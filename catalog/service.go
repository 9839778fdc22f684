package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/apperr"
	"storefront/models"
)

const (
	relatedLimit       = 3
	DefaultListLimit   = 6
	categoryTreeKey    = "categories:tree"
	productKeyTemplate = "product:%d"
)

// Cache stores JSON documents. Misses report false with a nil error.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type CategoryNode struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	SubCategories []CategoryNode `json:"sub_categories"`
}

type FilterParams struct {
	CategoryID uint
	PriceRange string
	SortBy     string
	Order      string
}

type ProductChanges struct {
	Name         *string
	Description  *string
	ImageURL     *string
	Price        *decimal.Decimal
	ComparePrice *decimal.Decimal
	CategoryID   *uint
	Quantity     *int
}

type Service struct {
	repo  *Repository
	cache Cache
	log   *zap.Logger
}

func NewService(repo *Repository, cache Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, log: log}
}

func productKey(id uint) string {
	return fmt.Sprintf(productKeyTemplate, id)
}

// Search matches name or description case-insensitively inside the category scope,
// newest first. An empty text matches every product in scope.
func (s *Service) Search(ctx context.Context, categoryID uint, text string) ([]models.Product, error) {
	scope, err := ResolveScope(ctx, s.repo, categoryID)
	if err != nil {
		return nil, err
	}
	return s.repo.Products(ctx, ProductQuery{
		Scope: scope,
		Text:  text,
		Sort:  NewSort(SortDateCreated, "desc"),
	})
}

// FilterProducts narrows the category scope to a price bucket and sorts the result.
func (s *Service) FilterProducts(ctx context.Context, params FilterParams) ([]models.Product, error) {
	scope, err := ResolveScope(ctx, s.repo, params.CategoryID)
	if err != nil {
		return nil, err
	}

	query := ProductQuery{
		Scope: scope,
		Sort:  NewSort(params.SortBy, params.Order),
	}
	if r, ok := PriceRangeFor(params.PriceRange); ok {
		query.Price = &r
	}
	return s.repo.Products(ctx, query)
}

// Related returns up to three best sellers sharing the product's category scope.
func (s *Service) Related(ctx context.Context, productID uint) ([]models.Product, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	scope, err := ResolveScope(ctx, s.repo, product.CategoryID)
	if err != nil {
		return nil, err
	}
	return s.repo.Products(ctx, ProductQuery{
		Scope:     scope,
		Sort:      NewSort(SortSold, "desc"),
		Limit:     relatedLimit,
		ExcludeID: product.ID,
	})
}

func (s *Service) ListProducts(ctx context.Context, sort Sort, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.repo.Products(ctx, ProductQuery{
		Scope: AllCategories(),
		Sort:  sort,
		Limit: limit,
	})
}

func (s *Service) Product(ctx context.Context, id uint) (*models.Product, error) {
	var cached models.Product
	if hit, err := s.cache.GetJSON(ctx, productKey(id), &cached); err != nil {
		s.log.Warn("product cache read failed", zap.Uint("product_id", id), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, productKey(id), product); err != nil {
		s.log.Warn("product cache write failed", zap.Uint("product_id", id), zap.Error(err))
	}
	return product, nil
}

func buildCategoryTree(categories []models.Category) []CategoryNode {
	tree := []CategoryNode{}
	index := make(map[uint]int)
	for _, category := range categories {
		if category.IsRoot() {
			index[category.ID] = len(tree)
			tree = append(tree, CategoryNode{
				ID:            category.ID,
				Name:          category.Name,
				SubCategories: []CategoryNode{},
			})
		}
	}
	for _, category := range categories {
		if category.IsRoot() {
			continue
		}
		if i, ok := index[*category.ParentID]; ok {
			tree[i].SubCategories = append(tree[i].SubCategories, CategoryNode{
				ID:            category.ID,
				Name:          category.Name,
				SubCategories: []CategoryNode{},
			})
		}
	}
	return tree
}

func (s *Service) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	var cached []CategoryNode
	if hit, err := s.cache.GetJSON(ctx, categoryTreeKey, &cached); err != nil {
		s.log.Warn("category cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	tree := buildCategoryTree(categories)
	if err := s.cache.SetJSON(ctx, categoryTreeKey, tree); err != nil {
		s.log.Warn("category cache write failed", zap.Error(err))
	}
	return tree, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidateProducts drops cached product details whose stock changed outside the catalog.
func (s *Service) InvalidateProducts(ctx context.Context, ids ...uint) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	s.invalidate(ctx, keys...)
}

func (s *Service) CreateCategory(ctx context.Context, name string, parentID *uint) (*models.Category, error) {
	if name == "" {
		return nil, apperr.NewInvalid("category name is required")
	}
	category := &models.Category{Name: name, ParentID: parentID}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, categoryTreeKey)
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	removed, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, categoryTreeKey)
	s.InvalidateProducts(ctx, removed...)
	return nil
}

func validatePricing(price, comparePrice decimal.Decimal, quantity int) error {
	if price.IsNegative() || comparePrice.IsNegative() {
		return apperr.NewInvalid("price must not be negative")
	}
	if quantity < 0 {
		return apperr.NewInvalid("quantity must not be negative")
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validatePricing(product.Price, product.ComparePrice, product.Quantity); err != nil {
		return err
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, changes ProductChanges) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Name != nil {
		product.Name = *changes.Name
	}
	if changes.Description != nil {
		product.Description = *changes.Description
	}
	if changes.ImageURL != nil {
		product.ImageURL = *changes.ImageURL
	}
	if changes.Price != nil {
		product.Price = *changes.Price
	}
	if changes.ComparePrice != nil {
		product.ComparePrice = *changes.ComparePrice
	}
	if changes.CategoryID != nil {
		product.CategoryID = *changes.CategoryID
	}
	if changes.Quantity != nil {
		product.Quantity = *changes.Quantity
	}
	if err := validatePricing(product.Price, product.ComparePrice, product.Quantity); err != nil {
		return nil, err
	}

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, productKey(id))
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, productKey(id))
	return nil
}
