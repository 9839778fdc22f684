package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/dbtest"
)

func TestOptionsOrderedByPrice(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()

	options, err := svc.Options(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if options == nil || len(options) != 0 {
		t.Fatalf("want empty list, got %#v", options)
	}

	for _, o := range []struct{ name, price string }{
		{"Express", "15.00"},
		{"Pickup", "0.00"},
		{"Standard", "4.99"},
	} {
		if _, err := svc.Create(ctx, o.name, "2-3 days", decimal.RequireFromString(o.price)); err != nil {
			t.Fatal(err)
		}
	}

	options, err = svc.Options(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Pickup", "Standard", "Express"}
	for i, o := range options {
		if o.Name != want[i] {
			t.Fatalf("order = %v", options)
		}
	}
}

func TestCreateAndFind(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Standard", "5 days", decimal.NewFromInt(5))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "Standard", "1 day", decimal.NewFromInt(9)); !errors.Is(err, ErrShippingExists) {
		t.Fatalf("duplicate: err = %v", err)
	}
	if _, err := svc.Create(ctx, "Broken", "1 day", decimal.NewFromInt(-1)); err == nil {
		t.Fatal("negative price accepted")
	}

	found, err := Find(db, created.ID)
	if err != nil || found.Name != "Standard" {
		t.Fatalf("found=%+v err=%v", found, err)
	}
	if _, err := Find(db, 999); !errors.Is(err, ErrShippingNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateNameHeldByDeletedOption(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()

	old, err := svc.Create(ctx, "Courier", "2 days", decimal.NewFromInt(7))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Delete(old).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "Courier", "1 day", decimal.NewFromInt(9)); !errors.Is(err, ErrShippingExists) {
		t.Fatalf("err = %v, want %v", err, ErrShippingExists)
	}
}
