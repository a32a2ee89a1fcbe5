// Package catalog provides an HTTP client for the storefront catalog API.
//
// # Overview
//
// The catalog is the remote source of truth for products and categories.
// This package only reads from it; everything the storefront client keeps
// locally (compare and wishlist shelves) stores snapshots built from these
// types, never the catalog records themselves.
//
// # Endpoints
//
//   - GET {api}/store/products: paginated listing with filters
//   - GET {api}/store/products/{id}: a single product with full details
//   - GET {api}/store/categories: category tree (parents with subcategories)
//   - GET {api}/store/filters/metadata: price range, availability counts
//
// Every response is wrapped in an envelope:
//
//	{"message": "...", "data": ..., "error": false,
//	 "meta": {"page": 1, "limit": 12, "total": 42, "total_pages": 4}}
//
// # Queries
//
// Query holds the listing parameters. It is normally produced by
// filter.Engine.ToQuery and should not be assembled by hand in view code.
// Query.Key gives a canonical encoding for equality checks because Query
// holds decimals and cannot be compared with ==.
//
// # Errors
//
// A 404 wraps ErrNotFound. Other non-2xx responses report the status and the
// envelope message when one is present. Transport timeouts come from the
// underlying http.Client (10 seconds); the client never retries.
package catalog
