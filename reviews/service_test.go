package reviews

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/dbtest"
	"storefront/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	db      *gorm.DB
	svc     *Service
	product models.Product
	users   []models.User
}

func newFixture(t *testing.T, users int) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{db: db, svc: NewService(db)}

	category := models.Category{Name: "Audio"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatal(err)
	}
	f.product = models.Product{Name: "Headphones", Price: d("50"), ComparePrice: d("60"), CategoryID: category.ID, Quantity: 3}
	if err := db.Create(&f.product).Error; err != nil {
		t.Fatal(err)
	}
	for i := 0; i < users; i++ {
		u := models.User{Email: fmt.Sprintf("u%d@example.com", i), FirstName: fmt.Sprintf("User%d", i), LastName: "T", Password: "x"}
		if err := db.Create(&u).Error; err != nil {
			t.Fatal(err)
		}
		f.users = append(f.users, u)
	}
	return f
}

// seed 依序寫入評論，建立時間遞增
func (f *fixture) seed(t *testing.T, ratings ...string) {
	t.Helper()
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range ratings {
		row := models.Review{
			Model:     gorm.Model{CreatedAt: base.Add(time.Duration(i) * time.Hour)},
			UserID:    f.users[i].ID,
			ProductID: f.product.ID,
			Rating:    d(r),
			Comment:   "review " + r,
		}
		if err := f.db.Omit("User", "Product").Create(&row).Error; err != nil {
			t.Fatal(err)
		}
	}
}

func ratings(list []Review) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Rating.String()
	}
	return out
}

func TestClampFilterRating(t *testing.T) {
	tests := map[string]string{
		"0":   "5",
		"7":   "5",
		"0.2": "0.5",
		"3.5": "3.5",
		"0.5": "0.5",
	}
	for in, want := range tests {
		if got := ClampFilterRating(d(in)); !got.Equal(d(want)) {
			t.Errorf("ClampFilterRating(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestFilterBands(t *testing.T) {
	f := newFixture(t, 6)
	f.seed(t, "0.5", "1", "3", "3.5", "4", "5")
	ctx := context.Background()

	tests := []struct {
		rating string
		want   []string
	}{
		{"0.5", []string{"0.5"}},
		{"0", []string{"5"}},
		{"1", []string{"1", "0.5"}},
		{"3.5", []string{"3.5", "3"}},
		{"4.5", []string{"4"}},
		{"2.5", []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.rating, func(t *testing.T) {
			got, err := f.svc.Filter(ctx, f.product.ID, d(tc.rating))
			if err != nil {
				t.Fatal(err)
			}
			if fmt.Sprint(ratings(got)) != fmt.Sprint(tc.want) {
				t.Fatalf("got %v, want %v", ratings(got), tc.want)
			}
		})
	}
}

func TestProductReviewsNewestFirst(t *testing.T) {
	f := newFixture(t, 3)
	f.seed(t, "2", "4", "5")

	got, err := f.svc.ProductReviews(context.Background(), f.product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(ratings(got)) != "[5 4 2]" {
		t.Fatalf("order = %v", ratings(got))
	}
	if got[0].User != "User2" {
		t.Fatalf("author = %q", got[0].User)
	}

	if _, err := f.svc.ProductReviews(context.Background(), 999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestReviewLifecycle(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	user := f.users[0].ID

	if r, err := f.svc.UserReview(ctx, user, f.product.ID); err != nil || r != nil {
		t.Fatalf("before create: review=%v err=%v", r, err)
	}
	if _, _, err := f.svc.Create(ctx, user, f.product.ID, d("6"), "too good"); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("rating out of range: err = %v", err)
	}

	created, all, err := f.svc.Create(ctx, user, f.product.ID, d("4.5"), "solid")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.Rating.Equal(d("4.5")) || created.User != "User0" || len(all) != 1 {
		t.Fatalf("created=%+v all=%v", created, all)
	}
	if _, _, err := f.svc.Create(ctx, user, f.product.ID, d("3"), "again"); !errors.Is(err, ErrReviewExists) {
		t.Fatalf("second create: err = %v", err)
	}

	updated, _, err := f.svc.Update(ctx, user, f.product.ID, d("2"), "broke after a week")
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Rating.Equal(d("2")) || updated.Comment != "broke after a week" {
		t.Fatalf("updated = %+v", updated)
	}

	remaining, err := f.svc.Delete(ctx, user, f.product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Fatalf("remaining = %v", remaining)
	}
	if _, err := f.svc.Delete(ctx, user, f.product.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("second delete: err = %v", err)
	}
	if _, _, err := f.svc.Update(ctx, user, f.product.ID, d("3"), "x"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("update missing: err = %v", err)
	}

	// 刪除後可再次評論
	if _, _, err := f.svc.Create(ctx, user, f.product.ID, d("3"), "second try"); err != nil {
		t.Fatalf("recreate: %v", err)
	}
}
