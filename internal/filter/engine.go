package filter

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/five82/vitrine/internal/catalog"
)

var (
	ErrUnknownDimension           = errors.New("unknown filter dimension")
	ErrSubcategoryWithoutCategory = errors.New("subcategory requires a category")
	ErrInvalidPriceRange          = errors.New("minimum price exceeds maximum price")
	ErrInvalidPrice               = errors.New("invalid price")
	ErrUnknownSort                = errors.New("unknown sort key")
	ErrInvalidPage                = errors.New("page must be 1 or greater")
)

const defaultPageSize = 12

// Options configure an Engine.
type Options struct {
	Bounds   Bounds // zero value means DefaultBounds
	PageSize int    // zero means 12
	Sort     SortKey
}

// Engine holds the criteria for one listing view. Every change other than a
// page change sends the listing back to page 1. It is not safe for concurrent
// use; the view that owns it serializes changes.
type Engine struct {
	bounds      Bounds
	pageSize    int
	defaultSort SortKey
	criteria    Criteria
	revision    uint64
	categories  map[string]string
}

// NewEngine returns an engine at its default criteria.
func NewEngine(opts Options) *Engine {
	bounds := opts.Bounds
	if bounds.Min.IsZero() && bounds.Max.IsZero() {
		bounds = DefaultBounds()
	}
	if bounds.Min.GreaterThan(bounds.Max) {
		bounds.Min, bounds.Max = bounds.Max, bounds.Min
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	sort := opts.Sort
	if !sort.Valid() {
		sort = SortNewest
	}
	e := &Engine{bounds: bounds, pageSize: pageSize, defaultSort: sort}
	e.criteria = e.defaults()
	return e
}

func (e *Engine) defaults() Criteria {
	c := Default(e.bounds)
	c.Sort = e.defaultSort
	return c
}

// Bounds returns the configured price bounds.
func (e *Engine) Bounds() Bounds { return e.bounds }

// PageSize returns the listing page size.
func (e *Engine) PageSize() int { return e.pageSize }

// Defaults returns the criteria ClearAll restores: Default(Bounds()) with the
// configured default sort.
func (e *Engine) Defaults() Criteria { return e.defaults() }

// Criteria returns the current criteria.
func (e *Engine) Criteria() Criteria { return e.criteria }

// Revision increases by one on every effective change.
func (e *Engine) Revision() uint64 { return e.revision }

// SetCategories records the category tree so ToQuery can send parent
// category names, which is what the storefront filters on.
func (e *Engine) SetCategories(categories []catalog.Category) {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		if c.IsParent() {
			names[c.ID] = c.Name
		}
	}
	e.categories = names
}

// commit applies next if it differs from the current criteria. resetPage
// sends the listing back to page 1.
func (e *Engine) commit(next Criteria, resetPage bool) {
	if next.Equal(e.criteria) {
		return
	}
	if resetPage {
		next.Page = 1
	}
	e.criteria = next
	e.revision++
}

// Set parses value for dim. Prices use "min..max" where either side may be
// empty; an empty value clears the dimension.
func (e *Engine) Set(dim Dimension, value string) error {
	value = strings.TrimSpace(value)
	switch dim {
	case DimCategory:
		return e.SetCategory(value)
	case DimSubcategory:
		return e.SetSubcategory(value)
	case DimPrice:
		min, max, err := e.parseRange(value)
		if err != nil {
			return err
		}
		return e.SetPriceRange(min, max)
	case DimSearch:
		return e.SetSearch(value)
	case DimSort:
		if value == "" {
			return e.Clear(DimSort)
		}
		return e.SetSort(SortKey(strings.ToLower(value)))
	case DimPage:
		if value == "" {
			return e.Clear(DimPage)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(ErrInvalidPage, "parse %q", value)
		}
		return e.SetPage(n)
	default:
		return errors.Wrapf(ErrUnknownDimension, "%q", dim)
	}
}

// SetCategory selects a category. Any change of category, including back to
// All, resets the subcategory.
func (e *Engine) SetCategory(id string) error {
	next := e.criteria
	next.Category = selector(id)
	if next.Category != e.criteria.Category {
		next.Subcategory = All
	}
	e.commit(next, true)
	return nil
}

// SetSubcategory selects a subcategory of the current category.
func (e *Engine) SetSubcategory(id string) error {
	sub := selector(id)
	if sub != All && e.criteria.Category == All {
		return ErrSubcategoryWithoutCategory
	}
	next := e.criteria
	next.Subcategory = sub
	e.commit(next, true)
	return nil
}

// SetPriceRange narrows the price range. Values outside the bounds are
// clamped.
func (e *Engine) SetPriceRange(min, max decimal.Decimal) error {
	min = e.bounds.clamp(min)
	max = e.bounds.clamp(max)
	if min.GreaterThan(max) {
		return errors.Wrapf(ErrInvalidPriceRange, "%s > %s", min, max)
	}
	next := e.criteria
	next.MinPrice = min
	next.MaxPrice = max
	e.commit(next, true)
	return nil
}

// SetSearch sets the free-text search. Surrounding whitespace is ignored.
func (e *Engine) SetSearch(q string) error {
	next := e.criteria
	next.Search = strings.TrimSpace(q)
	e.commit(next, true)
	return nil
}

// SetSort sets the listing order.
func (e *Engine) SetSort(key SortKey) error {
	if !key.Valid() {
		return errors.Wrapf(ErrUnknownSort, "%q", key)
	}
	next := e.criteria
	next.Sort = key
	e.commit(next, true)
	return nil
}

// SetPage moves to page n without touching any other dimension.
func (e *Engine) SetPage(n int) error {
	if n < 1 {
		return errors.Wrapf(ErrInvalidPage, "got %d", n)
	}
	next := e.criteria
	next.Page = n
	e.commit(next, false)
	return nil
}

// Clear resets one dimension to its default.
func (e *Engine) Clear(dim Dimension) error {
	def := e.defaults()
	switch dim {
	case DimCategory:
		return e.SetCategory(All)
	case DimSubcategory:
		return e.SetSubcategory(All)
	case DimPrice:
		return e.SetPriceRange(def.MinPrice, def.MaxPrice)
	case DimSearch:
		return e.SetSearch("")
	case DimSort:
		return e.SetSort(def.Sort)
	case DimPage:
		return e.SetPage(1)
	default:
		return errors.Wrapf(ErrUnknownDimension, "%q", dim)
	}
}

// ClearAll resets every dimension, page included.
func (e *Engine) ClearAll() {
	e.commit(e.defaults(), false)
}

// IsActive reports whether any narrowing filter is applied. Sort and page
// order the results without narrowing them and do not count.
func (e *Engine) IsActive() bool {
	return len(e.Active()) > 0
}

// Active returns the applied narrowing dimensions in chip order.
func (e *Engine) Active() []Dimension {
	c := e.criteria
	var out []Dimension
	if c.Category != All {
		out = append(out, DimCategory)
	}
	if c.Subcategory != All {
		out = append(out, DimSubcategory)
	}
	if !c.MinPrice.Equal(e.bounds.Min) || !c.MaxPrice.Equal(e.bounds.Max) {
		out = append(out, DimPrice)
	}
	if c.Search != "" {
		out = append(out, DimSearch)
	}
	return out
}

// ToQuery maps the criteria onto the storefront listing parameters.
func (e *Engine) ToQuery() catalog.Query {
	c := e.criteria
	q := catalog.Query{
		Page:   c.Page,
		Limit:  e.pageSize,
		Search: c.Search,
	}
	if c.Category != All {
		q.Category = c.Category
		if name, ok := e.categories[c.Category]; ok && name != "" {
			q.Category = name
		}
	}
	if c.Subcategory != All {
		q.Subcategory = c.Subcategory
	}
	if c.MinPrice.GreaterThan(e.bounds.Min) {
		q.MinPrice = decimal.NewNullDecimal(c.MinPrice)
	}
	if c.MaxPrice.LessThan(e.bounds.Max) {
		q.MaxPrice = decimal.NewNullDecimal(c.MaxPrice)
	}
	q.SortBy, q.SortOrder = sortParams(c.Sort)
	return q
}

func sortParams(key SortKey) (sortBy, sortOrder string) {
	switch key {
	case SortPriceAsc:
		return "price", "asc"
	case SortPriceDesc:
		return "price", "desc"
	case SortRating:
		return "rating", "desc"
	default:
		return "newest", "desc"
	}
}

func selector(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.EqualFold(id, All) {
		return All
	}
	return id
}

func (e *Engine) parseRange(value string) (decimal.Decimal, decimal.Decimal, error) {
	if value == "" {
		return e.bounds.Min, e.bounds.Max, nil
	}
	lo, hi, found := strings.Cut(value, "..")
	if !found {
		return decimal.Zero, decimal.Zero, errors.Wrapf(ErrInvalidPrice, "want min..max, got %q", value)
	}
	min, err := parsePrice(lo, e.bounds.Min)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	max, err := parsePrice(hi, e.bounds.Max)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return min, max, nil
}

func parsePrice(raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidPrice, "%q", raw)
	}
	return d, nil
}
