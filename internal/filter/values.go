package filter

import (
	"net/url"
	"strconv"
	"strings"
)

// URL parameter names. They match the storefront listing page so a copied
// link opens the same listing.
const (
	paramCategory    = "category"
	paramSubcategory = "subcategory"
	paramSearch      = "q"
	paramMinPrice    = "minPrice"
	paramMaxPrice    = "maxPrice"
	paramSort        = "sort"
	paramPage        = "page"
)

// Values encodes the non-default dimensions as URL parameters.
func (e *Engine) Values() url.Values {
	c := e.criteria
	v := url.Values{}
	if c.Category != All {
		v.Set(paramCategory, c.Category)
	}
	if c.Subcategory != All {
		v.Set(paramSubcategory, c.Subcategory)
	}
	if c.Search != "" {
		v.Set(paramSearch, c.Search)
	}
	if !c.MinPrice.Equal(e.bounds.Min) {
		v.Set(paramMinPrice, c.MinPrice.String())
	}
	if !c.MaxPrice.Equal(e.bounds.Max) {
		v.Set(paramMaxPrice, c.MaxPrice.String())
	}
	if c.Sort != e.defaultSort {
		v.Set(paramSort, string(c.Sort))
	}
	if c.Page != 1 {
		v.Set(paramPage, strconv.Itoa(c.Page))
	}
	return v
}

// FromValues replaces the criteria with the ones encoded in v. Missing
// parameters take their defaults. On error the engine is left unchanged.
func (e *Engine) FromValues(v url.Values) error {
	scratch := &Engine{
		bounds:      e.bounds,
		pageSize:    e.pageSize,
		defaultSort: e.defaultSort,
		criteria:    e.defaults(),
		categories:  e.categories,
	}

	if err := scratch.SetCategory(v.Get(paramCategory)); err != nil {
		return err
	}
	if err := scratch.SetSubcategory(v.Get(paramSubcategory)); err != nil {
		return err
	}
	priceRange := strings.TrimSpace(v.Get(paramMinPrice)) + ".." + strings.TrimSpace(v.Get(paramMaxPrice))
	if err := scratch.Set(DimPrice, priceRange); err != nil {
		return err
	}
	if err := scratch.SetSearch(v.Get(paramSearch)); err != nil {
		return err
	}
	if err := scratch.Set(DimSort, v.Get(paramSort)); err != nil {
		return err
	}
	// Page goes last; every other setter resets it.
	if err := scratch.Set(DimPage, v.Get(paramPage)); err != nil {
		return err
	}

	e.commit(scratch.criteria, false)
	return nil
}

// ParseQuery is FromValues for a raw query string such as
// "category=cat-home&page=2".
func (e *Engine) ParseQuery(raw string) error {
	v, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if err != nil {
		return err
	}
	return e.FromValues(v)
}
