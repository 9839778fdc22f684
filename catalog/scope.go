package catalog

import (
	"context"

	"storefront/apperr"
	"storefront/models"
)

// NoCategory 代表不篩選分類
const NoCategory uint = 0

var ErrCategoryNotFound = apperr.NewNotFound("category not found")

// CategoryLookup is the read access ResolveScope needs from the store.
// FindCategory returns ErrCategoryNotFound for unknown ids.
type CategoryLookup interface {
	FindCategory(ctx context.Context, id uint) (*models.Category, error)
	ChildCategoryIDs(ctx context.Context, parentID uint) ([]uint, error)
}

// Scope is the set of categories whose products a listing includes.
// The zero value matches nothing; use AllCategories for no filtering.
type Scope struct {
	all bool
	ids []uint
}

func AllCategories() Scope {
	return Scope{all: true}
}

func ScopeOf(ids ...uint) Scope {
	return Scope{ids: ids}
}

func (s Scope) All() bool {
	return s.all
}

func (s Scope) IDs() []uint {
	return s.ids
}

func (s Scope) Contains(id uint) bool {
	if s.all {
		return true
	}
	for _, scoped := range s.ids {
		if scoped == id {
			return true
		}
	}
	return false
}

// ResolveScope maps a requested category to the categories a listing covers.
//
// The catalog is at most two levels deep: a child category covers only itself,
// a root covers itself plus its direct children. Grandchildren are never
// collected, so a deeper tree would silently lose its lower levels.
func ResolveScope(ctx context.Context, lookup CategoryLookup, categoryID uint) (Scope, error) {
	if categoryID == NoCategory {
		return AllCategories(), nil
	}

	category, err := lookup.FindCategory(ctx, categoryID)
	if err != nil {
		return Scope{}, err
	}

	if !category.IsRoot() {
		return ScopeOf(category.ID), nil
	}

	children, err := lookup.ChildCategoryIDs(ctx, category.ID)
	if err != nil {
		return Scope{}, err
	}

	ids := make([]uint, 0, len(children)+1)
	ids = append(ids, category.ID)
	ids = append(ids, children...)
	return ScopeOf(ids...), nil
}
