package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/cache"
	"storefront/cart"
	"storefront/dbtest"
	"storefront/models"
	"storefront/wishlist"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	drinks  models.Category
	coffee  models.Category
	tea     models.Category
	snacks  models.Category
	created int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{db: db, svc: NewService(NewRepository(db), cache.Nop{}, nil)}

	f.drinks = f.category(t, "Drinks", nil)
	f.coffee = f.category(t, "Coffee", &f.drinks.ID)
	f.tea = f.category(t, "Tea", &f.drinks.ID)
	f.snacks = f.category(t, "Snacks", nil)
	return f
}

func (f *fixture) category(t *testing.T, name string, parent *uint) models.Category {
	t.Helper()
	c := models.Category{Name: name, ParentID: parent}
	if err := f.db.Create(&c).Error; err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

// product 依建立順序遞增CreatedAt
func (f *fixture) product(t *testing.T, name, description string, category models.Category, price string, sold int) models.Product {
	t.Helper()
	f.created++
	p := models.Product{
		Model:        gorm.Model{CreatedAt: baseTime.Add(time.Duration(f.created) * time.Hour)},
		Name:         name,
		Description:  description,
		Price:        decimal.RequireFromString(price),
		ComparePrice: decimal.RequireFromString(price),
		CategoryID:   category.ID,
		Quantity:     10,
		Sold:         sold,
	}
	if err := f.db.Create(&p).Error; err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func assertNames(t *testing.T, products []models.Product, want ...string) {
	t.Helper()
	got := names(products)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSearchEmptyTextReturnsScopeNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.product(t, "House Blend", "", f.coffee, "12.00", 0)
	f.product(t, "Green Tea", "", f.tea, "8.00", 0)
	f.product(t, "Sparkling Water", "", f.drinks, "2.00", 0)
	f.product(t, "Chips", "", f.snacks, "3.00", 0)

	products, err := f.svc.Search(context.Background(), f.drinks.ID, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	assertNames(t, products, "Sparkling Water", "Green Tea", "House Blend")
}

func TestSearchMatchesNameOrDescriptionCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Espresso Roast", "dark and oily", f.coffee, "15.00", 0)
	f.product(t, "Breakfast", "a bright ESPRESSO friendly blend", f.coffee, "11.00", 0)
	f.product(t, "Earl Grey", "bergamot", f.tea, "7.00", 0)

	products, err := f.svc.Search(context.Background(), NoCategory, "espresso")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	assertNames(t, products, "Breakfast", "Espresso Roast")
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	f.product(t, "100% Arabica", "", f.coffee, "15.00", 0)
	f.product(t, "Robusta", "", f.coffee, "9.00", 0)

	products, err := f.svc.Search(context.Background(), NoCategory, "%")
	if err != nil {
		t.Fatal(err)
	}
	assertNames(t, products, "100% Arabica")
}

func TestSearchChildCategoryOnly(t *testing.T) {
	f := newFixture(t)
	f.product(t, "House Blend", "", f.coffee, "12.00", 0)
	f.product(t, "Green Tea", "", f.tea, "8.00", 0)
	f.product(t, "Water", "", f.drinks, "1.00", 0)

	products, err := f.svc.Search(context.Background(), f.tea.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	assertNames(t, products, "Green Tea")
}

func TestSearchUnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Search(context.Background(), 999, "")
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestFilterProductsPriceBucket(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Below", "", f.coffee, "19.99", 0)
	f.product(t, "Floor", "", f.coffee, "20.00", 0)
	f.product(t, "Ceiling", "", f.tea, "39.99", 0)
	f.product(t, "Above", "", f.tea, "40.00", 0)

	products, err := f.svc.FilterProducts(context.Background(), FilterParams{
		CategoryID: f.drinks.ID,
		PriceRange: "20 - 39",
		SortBy:     "price",
		Order:      "asc",
	})
	if err != nil {
		t.Fatalf("FilterProducts: %v", err)
	}
	assertNames(t, products, "Floor", "Ceiling")
}

func TestFilterProductsUnknownBucketAndSortFallback(t *testing.T) {
	f := newFixture(t)
	f.product(t, "First", "", f.coffee, "5.00", 0)
	f.product(t, "Second", "", f.coffee, "90.00", 0)
	f.product(t, "Third", "", f.snacks, "50.00", 0)

	products, err := f.svc.FilterProducts(context.Background(), FilterParams{
		CategoryID: NoCategory,
		PriceRange: "cheap",
		SortBy:     "quantity",
		Order:      "desc",
	})
	if err != nil {
		t.Fatal(err)
	}
	assertNames(t, products, "Third", "Second", "First")
}

func TestFilterProductsEmptyIsSuccess(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Cheap", "", f.snacks, "2.00", 0)

	products, err := f.svc.FilterProducts(context.Background(), FilterParams{
		CategoryID: f.snacks.ID,
		PriceRange: "More than 80",
	})
	if err != nil {
		t.Fatalf("FilterProducts: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", products)
	}
}

func TestRelatedTopThreeBySoldExcludingSelf(t *testing.T) {
	f := newFixture(t)
	self := f.product(t, "Self", "", f.coffee, "10.00", 100)
	f.product(t, "Sold10", "", f.coffee, "10.00", 10)
	f.product(t, "Sold50", "", f.coffee, "10.00", 50)
	f.product(t, "Sold30", "", f.coffee, "10.00", 30)
	f.product(t, "Sold20", "", f.coffee, "10.00", 20)
	f.product(t, "Sold40", "", f.coffee, "10.00", 40)
	f.product(t, "OtherChild", "", f.tea, "10.00", 999)

	products, err := f.svc.Related(context.Background(), self.ID)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	assertNames(t, products, "Sold50", "Sold40", "Sold30")
}

func TestRelatedRootScopeIncludesChildren(t *testing.T) {
	f := newFixture(t)
	self := f.product(t, "Water", "", f.drinks, "1.00", 0)
	f.product(t, "Tea", "", f.tea, "5.00", 3)
	f.product(t, "Chips", "", f.snacks, "2.00", 100)

	products, err := f.svc.Related(context.Background(), self.ID)
	if err != nil {
		t.Fatal(err)
	}
	assertNames(t, products, "Tea")
}

func TestRelatedAloneIsEmptySuccess(t *testing.T) {
	f := newFixture(t)
	self := f.product(t, "Chips", "", f.snacks, "2.00", 0)

	products, err := f.svc.Related(context.Background(), self.ID)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("want empty, got %v", names(products))
	}
}

func TestRelatedUnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Related(context.Background(), 404)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestListProductsLimitAndSort(t *testing.T) {
	f := newFixture(t)
	for i, price := range []string{"9", "3", "7", "1", "5", "8", "2", "6"} {
		f.product(t, "P"+price, "", f.snacks, price, i)
	}

	products, err := f.svc.ListProducts(context.Background(), NewSort("price", "desc"), 0)
	if err != nil {
		t.Fatal(err)
	}
	assertNames(t, products, "P9", "P8", "P7", "P6", "P5", "P3")

	products, err = f.svc.ListProducts(context.Background(), NewSort("price", "asc"), 2)
	if err != nil {
		t.Fatal(err)
	}
	assertNames(t, products, "P1", "P2")
}

func TestCategoryTreeCachedAndInvalidated(t *testing.T) {
	f := newFixture(t)
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.svc = NewService(NewRepository(f.db), cache.NewRedis(client, time.Minute), nil)
	ctx := context.Background()

	tree, err := f.svc.CategoryTree(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree) != 2 || tree[0].Name != "Drinks" || len(tree[0].SubCategories) != 2 || len(tree[1].SubCategories) != 0 {
		t.Fatalf("unexpected tree %+v", tree)
	}
	if !server.Exists("storefront:categories:tree") {
		t.Fatal("tree should be cached")
	}

	if _, err := f.svc.CreateCategory(ctx, "Juice", &f.drinks.ID); err != nil {
		t.Fatal(err)
	}
	if server.Exists("storefront:categories:tree") {
		t.Fatal("tree cache should be invalidated")
	}
	tree, err = f.svc.CategoryTree(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree[0].SubCategories) != 3 {
		t.Fatalf("want 3 sub categories, got %+v", tree[0].SubCategories)
	}
}

func TestProductCacheInvalidatedOnUpdate(t *testing.T) {
	f := newFixture(t)
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.svc = NewService(NewRepository(f.db), cache.NewRedis(client, time.Minute), nil)
	ctx := context.Background()

	p := f.product(t, "Mug", "", f.snacks, "4.00", 0)
	if _, err := f.svc.Product(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	name := "Big Mug"
	if _, err := f.svc.UpdateProduct(ctx, p.ID, ProductChanges{Name: &name}); err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.Product(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Big Mug" {
		t.Fatalf("stale cache: %q", got.Name)
	}
	if !got.Price.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("price = %s", got.Price)
	}
}

func TestCreateCategoryRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateCategory(ctx, "Espresso", &f.coffee.ID); apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("nesting under a child: err = %v", err)
	}
	if _, err := f.svc.CreateCategory(ctx, "Coffee", nil); apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("duplicate name: err = %v", err)
	}
	missing := uint(999)
	if _, err := f.svc.CreateCategory(ctx, "Orphan", &missing); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("missing parent: err = %v", err)
	}
}

func TestDeleteCategoryRemovesChildrenAndProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "House Blend", "", f.coffee, "12.00", 0)
	f.product(t, "Water", "", f.drinks, "1.00", 0)
	kept := f.product(t, "Chips", "", f.snacks, "3.00", 0)

	if err := f.svc.DeleteCategory(ctx, f.drinks.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := f.svc.Search(ctx, f.coffee.ID, ""); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("child category should be gone, err = %v", err)
	}
	products, err := f.svc.Search(ctx, NoCategory, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].ID != kept.ID {
		t.Fatalf("remaining products = %v", names(products))
	}
	if err := f.svc.DeleteCategory(ctx, f.drinks.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("second delete: err = %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.CreateProduct(ctx, &models.Product{Name: "Bad", CategoryID: f.snacks.ID, Price: decimal.NewFromInt(-1)})
	if apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("negative price: err = %v", err)
	}
	err = f.svc.CreateProduct(ctx, &models.Product{Name: "Lost", CategoryID: 999})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("unknown category: err = %v", err)
	}
	p := &models.Product{Name: "Ok", CategoryID: f.snacks.ID, Price: decimal.NewFromInt(3), Quantity: 4}
	if err := f.svc.CreateProduct(ctx, p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if err := f.svc.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if err := f.svc.DeleteProduct(ctx, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("double delete: err = %v", err)
	}
}

func TestRecreateDeletedCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shoes, err := f.svc.CreateCategory(ctx, "Shoes", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.DeleteCategory(ctx, shoes.ID); err != nil {
		t.Fatal(err)
	}

	again, err := f.svc.CreateCategory(ctx, "Shoes", &f.drinks.ID)
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if again.ParentID == nil || *again.ParentID != f.drinks.ID {
		t.Fatalf("parent = %v", again.ParentID)
	}
	if _, err := f.svc.Search(ctx, again.ID, ""); err != nil {
		t.Fatalf("recreated category not searchable: %v", err)
	}
	if _, err := f.svc.CreateCategory(ctx, "Shoes", nil); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("duplicate after recreate: err = %v", err)
	}
}

func (f *fixture) user(t *testing.T, email string) models.User {
	t.Helper()
	u := models.User{Email: email, FirstName: "Kim", LastName: "Park", Password: "x"}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	return u
}

func TestDeletingProductsDropsCartAndWishlistLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// 加入願望清單會移出購物車，所以分開兩個使用者
	shopper := f.user(t, "kim@example.com")
	browser := f.user(t, "lee@example.com")
	blend := f.product(t, "House Blend", "", f.coffee, "12.00", 0)
	mug := f.product(t, "Mug", "", f.snacks, "4.00", 0)
	chips := f.product(t, "Chips", "", f.snacks, "3.00", 0)

	carts := cart.NewService(f.db)
	wishes := wishlist.NewService(f.db)
	for _, p := range []models.Product{blend, mug, chips} {
		if _, err := carts.Add(ctx, shopper.ID, p.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := wishes.Add(ctx, browser.ID, p.ID); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		remove func() error
		left   int
	}{
		{"product", func() error { return f.svc.DeleteProduct(ctx, mug.ID) }, 2},
		{"category", func() error { return f.svc.DeleteCategory(ctx, f.drinks.ID) }, 1},
	}
	for _, tt := range tests {
		if err := tt.remove(); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		items, err := carts.Items(ctx, shopper.ID)
		if err != nil {
			t.Fatal(err)
		}
		total, _ := carts.ItemTotal(ctx, shopper.ID)
		if len(items) != tt.left || total != tt.left {
			t.Fatalf("%s: cart lines=%d total=%d, want %d", tt.name, len(items), total, tt.left)
		}
		for _, item := range items {
			if item.Product.ID == 0 {
				t.Fatalf("%s: cart line %d has no product", tt.name, item.ID)
			}
		}
		wished, err := wishes.Items(ctx, browser.ID)
		if err != nil {
			t.Fatal(err)
		}
		wishTotal, _ := wishes.ItemTotal(ctx, browser.ID)
		if len(wished) != tt.left || wishTotal != tt.left {
			t.Fatalf("%s: wishlist lines=%d total=%d, want %d", tt.name, len(wished), wishTotal, tt.left)
		}
	}
}
