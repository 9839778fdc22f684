package catalog

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// PriceRange is a half-open interval [Min, Max); Max is nil for open ended buckets.
type PriceRange struct {
	Min decimal.Decimal
	Max *decimal.Decimal
}

func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	return r.Max == nil || price.LessThan(*r.Max)
}

func bounded(lo, hi int64) PriceRange {
	upper := decimal.NewFromInt(hi)
	return PriceRange{Min: decimal.NewFromInt(lo), Max: &upper}
}

var priceRanges = map[string]PriceRange{
	"1 - 19":       bounded(1, 20),
	"20 - 39":      bounded(20, 40),
	"40 - 59":      bounded(40, 60),
	"60 - 79":      bounded(60, 80),
	"More than 80": {Min: decimal.NewFromInt(80)},
}

// PriceRangeFor looks up a bucket by its exact label.
// Unknown labels report false and callers skip price filtering.
func PriceRangeFor(label string) (PriceRange, bool) {
	r, ok := priceRanges[label]
	return r, ok
}

func PriceRangeLabels() []string {
	return []string{"1 - 19", "20 - 39", "40 - 59", "60 - 79", "More than 80"}
}

const (
	SortDateCreated = "date_created"
	SortPrice       = "price"
	SortSold        = "sold"
	SortName        = "name"
)

var sortColumns = map[string]string{
	SortDateCreated: "created_at",
	SortPrice:       "price",
	SortSold:        "sold",
	SortName:        "name",
}

// Sort is a validated ordering for product listings.
type Sort struct {
	Field string
	Desc  bool
}

// NewSort falls back to date_created for fields outside the allow-list.
// Only "desc" sorts descending.
func NewSort(field, order string) Sort {
	if _, ok := sortColumns[field]; !ok {
		field = SortDateCreated
	}
	return Sort{Field: field, Desc: order == "desc"}
}

func (s Sort) column() string {
	return sortColumns[s.Field]
}

func (s Sort) orderBy() clause.OrderBy {
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: clause.CurrentTable, Name: s.column()}, Desc: s.Desc},
		{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Desc: s.Desc},
	}}
}
