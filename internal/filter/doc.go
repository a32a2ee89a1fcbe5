// Package filter composes listing filters into catalog queries.
//
// An Engine holds six independent dimensions: category, subcategory, price
// range, search, sort and page. Rules:
//
//   - changing any dimension except page resets page to 1
//   - changing the category (including to All) resets the subcategory
//   - a subcategory needs a category
//   - setting a dimension to its current value is a no-op
//
// ToQuery is the only way the listing view builds a catalog.Query.
// Values and FromValues mirror the criteria to URL parameters so a listing
// can be reopened from the command line.
package filter
