package catalog

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product mirrors a storefront product as returned by the catalog API. List
// responses only carry the thin fields (id, name, image, price); the detail
// endpoint fills in the rest.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image,omitempty"`
	CategoryName  string          `json:"category_name,omitempty"`
	SubCategoryID string          `json:"sub_category_id,omitempty"`
	Rating        float64         `json:"rating,omitempty"`
	Status        string          `json:"status,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

// Category is a storefront category. Parents carry their subcategories.
type Category struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	ParentID      *string    `json:"parent_id"`
	ProductCount  int        `json:"product_count"`
	Subcategories []Category `json:"subcategories,omitempty"`
}

// IsParent reports whether the category is a top-level category.
func (c Category) IsParent() bool {
	return c.ParentID == nil || strings.TrimSpace(*c.ParentID) == ""
}

// FilterMetadata describes the filter space the storefront offers.
type FilterMetadata struct {
	Availability *Availability `json:"availability"`
	Categories   []Category    `json:"categories"`
	PriceRange   *PriceRange   `json:"priceRange"`
}

// Availability counts products in and out of stock.
type Availability struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}

// PriceRange is the minimum and maximum price present in the store.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Query configures GET /store/products requests.
type Query struct {
	Page        int
	Limit       int
	Search      string
	Category    string
	Subcategory string
	MinPrice    decimal.NullDecimal
	MaxPrice    decimal.NullDecimal
	SortBy      string
	SortOrder   string
}

// Values encodes the query using the storefront parameter names.
func (q Query) Values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("q", s)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		values.Set("category", c)
	}
	if sc := strings.TrimSpace(q.Subcategory); sc != "" {
		values.Set("subcategory", sc)
	}
	if q.MinPrice.Valid {
		values.Set("minPrice", q.MinPrice.Decimal.String())
	}
	if q.MaxPrice.Valid {
		values.Set("maxPrice", q.MaxPrice.Decimal.String())
	}
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sortOrder", q.SortOrder)
	}
	return values
}

// Key returns a canonical string for the query. Two queries with equal keys
// request the same listing.
func (q Query) Key() string {
	return q.Values().Encode()
}

// Page is one page of listing results.
type Page struct {
	Results    []Product
	Count      int
	HasNext    bool
	Number     int
	TotalPages int
}

// Envelope is the response wrapper used by every storefront endpoint.
type Envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   bool            `json:"error,omitempty"`
	Meta    *Pagination     `json:"meta"`
}

// Pagination is the meta block attached to paginated responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
