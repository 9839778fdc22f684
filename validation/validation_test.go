package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type productInput struct {
	Name  string `json:"name" binding:"required" validate:"required"`
	Price string `json:"price" validate:"required,money"`
}

type reviewInput struct {
	Rating string `json:"rating" validate:"required,decimal,rating"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := Configure(v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestMoney(t *testing.T) {
	v := newValidator(t)
	tests := map[string]bool{
		"19.99":     true,
		"20":        true,
		"0":         true,
		"999999.99": true,
		"1000000":   false,
		"1e9":       false,
		"-1":        false,
		"1.999":     false,
		"abc":       false,
	}
	for price, want := range tests {
		err := v.Struct(productInput{Name: "x", Price: price})
		if (err == nil) != want {
			t.Errorf("price %q: err = %v, want valid=%v", price, err, want)
		}
	}
}

func TestRating(t *testing.T) {
	v := newValidator(t)
	tests := map[string]bool{
		"0.5": true,
		"4.5": true,
		"5":   true,
		"5.5": false,
		"0":   false,
		"3.2": false,
		"ten": false,
	}
	for rating, want := range tests {
		err := v.Struct(reviewInput{Rating: rating})
		if (err == nil) != want {
			t.Errorf("rating %q: err = %v, want valid=%v", rating, err, want)
		}
	}
}

func TestDescribeUsesJSONNames(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(reviewInput{Rating: "ten"})
	if got := Describe(err); got != "rating must be a decimal value" {
		t.Fatalf("Describe = %q", got)
	}
	err = v.Struct(productInput{Price: "1"})
	if got := Describe(err); !strings.HasPrefix(got, "name is required") {
		t.Fatalf("Describe = %q", got)
	}
}
