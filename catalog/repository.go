package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

var (
	ErrProductNotFound = apperr.NewNotFound("product not found")
	ErrCategoryExists  = apperr.NewConflict("category name already exists")
)

// ProductQuery describes one product listing. Zero values disable a filter,
// except Scope which must be resolved first.
type ProductQuery struct {
	Scope     Scope
	Text      string
	Price     *PriceRange
	Sort      Sort
	Limit     int
	ExcludeID uint
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, apperr.NewInternal("could not load category", err)
	}
	return &category, nil
}

func (r *Repository) ChildCategoryIDs(ctx context.Context, parentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("parent_id = ?", parentID).
		Order("id").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, apperr.NewInternal("could not load child categories", err)
	}
	return ids, nil
}

func (r *Repository) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("id").Find(&categories).Error
	if err != nil {
		return nil, apperr.NewInternal("could not load categories", err)
	}
	return categories, nil
}

func (r *Repository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.NewInternal("could not load product", err)
	}
	return &product, nil
}

func inScope(scope Scope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.All() {
			return db
		}
		return db.Where("category_id IN ?", scope.IDs())
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func matchingText(text string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if text == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
		return db.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", pattern, pattern)
	}
}

func inPriceRange(r *PriceRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r == nil {
			return db
		}
		db = db.Where("price >= ?", r.Min)
		if r.Max != nil {
			db = db.Where("price < ?", *r.Max)
		}
		return db
	}
}

func excluding(id uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id == 0 {
			return db
		}
		return db.Where("id <> ?", id)
	}
}

func (r *Repository) Products(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(inScope(q.Scope), matchingText(q.Text), inPriceRange(q.Price), excluding(q.ExcludeID)).
		Clauses(q.Sort.orderBy())
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	products := []models.Product{}
	if err := query.Find(&products).Error; err != nil {
		return nil, apperr.NewInternal("could not load products", err)
	}
	return products, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if category.ParentID != nil {
			var parent models.Category
			if err := tx.First(&parent, *category.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NewNotFound("parent category not found")
				}
				return apperr.NewInternal("could not load parent category", err)
			}
			//只允許兩層分類
			if !parent.IsRoot() {
				return apperr.NewInvalid("parent category must be a root category")
			}
		}

		var existing models.Category
		err := tx.Unscoped().Where("name = ?", category.Name).Limit(1).Find(&existing).Error
		if err != nil {
			return apperr.NewInternal("could not check category name", err)
		}
		if existing.ID != 0 {
			if !existing.DeletedAt.Valid {
				return ErrCategoryExists
			}
			return restoreCategory(tx, &existing, category)
		}

		if err := tx.Create(category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCategoryExists
			}
			return apperr.NewInternal("could not create category", err)
		}
		return nil
	})
}

// restoreCategory 名稱被已刪除的分類佔用時，復原該筆資料並套用新的上層分類
func restoreCategory(tx *gorm.DB, deleted, category *models.Category) error {
	var parent interface{}
	if category.ParentID != nil {
		parent = *category.ParentID
	}
	err := tx.Unscoped().Model(deleted).Updates(map[string]interface{}{
		"deleted_at": nil,
		"parent_id":  parent,
	}).Error
	if err != nil {
		return apperr.NewInternal("could not restore category", err)
	}
	deleted.DeletedAt = gorm.DeletedAt{}
	deleted.ParentID = category.ParentID
	*category = *deleted
	return nil
}

// DeleteCategory removes the category, its children and every product filed
// under any of them.
func (r *Repository) DeleteCategory(ctx context.Context, id uint) ([]uint, error) {
	var removedProducts []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return apperr.NewInternal("could not load category", err)
		}

		var categoryIDs []uint
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Pluck("id", &categoryIDs).Error; err != nil {
			return apperr.NewInternal("could not load child categories", err)
		}
		categoryIDs = append(categoryIDs, id)

		if err := tx.Model(&models.Product{}).Where("category_id IN ?", categoryIDs).Pluck("id", &removedProducts).Error; err != nil {
			return apperr.NewInternal("could not load category products", err)
		}
		if err := tx.Where("category_id IN ?", categoryIDs).Delete(&models.Product{}).Error; err != nil {
			return apperr.NewInternal("could not delete category products", err)
		}
		if err := detachProducts(tx, removedProducts); err != nil {
			return err
		}
		if err := tx.Delete(&models.Category{}, categoryIDs).Error; err != nil {
			return apperr.NewInternal("could not delete category", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removedProducts, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	if _, err := r.FindCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		return apperr.NewInternal("could not create product", err)
	}
	return nil
}

func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) error {
	if _, err := r.FindCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("Category").Save(product).Error; err != nil {
		return apperr.NewInternal("could not update product", err)
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Product{}, id)
		if result.Error != nil {
			return apperr.NewInternal("could not delete product", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return detachProducts(tx, []uint{id})
	})
}

type ownerLines struct {
	OwnerID uint
	Removed int
}

// dropLines hard-deletes the rows of table that point at productIDs and lowers
// each owner's total_items by the number of rows it lost.
func dropLines(tx *gorm.DB, line interface{}, ownerColumn string, owner interface{}, productIDs []uint) error {
	var counts []ownerLines
	err := tx.Model(line).
		Select(ownerColumn+" AS owner_id, COUNT(*) AS removed").
		Where("product_id IN ?", productIDs).
		Group(ownerColumn).
		Scan(&counts).
		Error
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}
	if err := tx.Unscoped().Where("product_id IN ?", productIDs).Delete(line).Error; err != nil {
		return err
	}
	for _, c := range counts {
		err := tx.Model(owner).
			Where("id = ?", c.OwnerID).
			Update("total_items", gorm.Expr("total_items - ?", c.Removed)).
			Error
		if err != nil {
			return err
		}
	}
	return nil
}

// detachProducts 移除購物車與願望清單中已下架的商品
func detachProducts(tx *gorm.DB, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	if err := dropLines(tx, &models.CartItem{}, "cart_id", &models.Cart{}, productIDs); err != nil {
		return apperr.NewInternal("could not remove cart lines", err)
	}
	if err := dropLines(tx, &models.WishListItem{}, "wish_list_id", &models.WishList{}, productIDs); err != nil {
		return apperr.NewInternal("could not remove wishlist lines", err)
	}
	return nil
}
