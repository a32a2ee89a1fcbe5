package filter

import (
	"github.com/shopspring/decimal"
)

// All is the selector sentinel meaning "no restriction".
const All = "all"

// Dimension names one independent filter axis.
type Dimension string

const (
	DimCategory    Dimension = "category"
	DimSubcategory Dimension = "subcategory"
	DimPrice       Dimension = "price"
	DimSearch      Dimension = "search"
	DimSort        Dimension = "sort"
	DimPage        Dimension = "page"
)

// Dimensions lists every dimension in chip order.
var Dimensions = []Dimension{DimCategory, DimSubcategory, DimPrice, DimSearch, DimSort, DimPage}

// SortKey orders the listing.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
)

// SortKeys lists the sort keys in cycling order.
var SortKeys = []SortKey{SortNewest, SortPriceAsc, SortPriceDesc, SortRating}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Label is a short human description.
func (k SortKey) Label() string {
	switch k {
	case SortPriceAsc:
		return "price: low to high"
	case SortPriceDesc:
		return "price: high to low"
	case SortRating:
		return "top rated"
	default:
		return "newest"
	}
}

// Next returns the key after k in SortKeys, wrapping around.
func (k SortKey) Next() SortKey {
	for i, known := range SortKeys {
		if known == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortNewest
}

// Bounds is the global price range.
type Bounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// DefaultBounds returns 0..300000.
func DefaultBounds() Bounds {
	return Bounds{Min: decimal.Zero, Max: decimal.NewFromInt(300000)}
}

func (b Bounds) clamp(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(b.Min) {
		return b.Min
	}
	if d.GreaterThan(b.Max) {
		return b.Max
	}
	return d
}

// Criteria is the full set of listing filters.
type Criteria struct {
	Category    string
	Subcategory string
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
	Search      string
	Sort        SortKey
	Page        int
}

// Default returns the criteria with every dimension at its default.
func Default(b Bounds) Criteria {
	return Criteria{
		Category:    All,
		Subcategory: All,
		MinPrice:    b.Min,
		MaxPrice:    b.Max,
		Sort:        SortNewest,
		Page:        1,
	}
}

// Equal compares criteria by value; decimals compare numerically.
func (c Criteria) Equal(o Criteria) bool {
	return c.Category == o.Category &&
		c.Subcategory == o.Subcategory &&
		c.MinPrice.Equal(o.MinPrice) &&
		c.MaxPrice.Equal(o.MaxPrice) &&
		c.Search == o.Search &&
		c.Sort == o.Sort &&
		c.Page == o.Page
}
