// Package ui provides the vitrine terminal interface, built on Bubble Tea.
//
// # Views
//
//   - Catalog: filter chips, the product listing with a detail pane, and the
//     compare bar. Descriptions are rendered from markdown with glamour.
//   - Compare: compared products side by side, cheapest price highlighted.
//   - Wishlist: saved products as rows.
//   - Activity: the tail of the vitrine log file.
//
// The help overlay, the filter form and the category picker open on top of
// the active view.
//
// # Gestures
//
// Every key maps to one operation: catalog keys drive a filter.Engine, shelf
// keys call shelf.Store methods. Shelf outcomes are announced by the shelves
// through the notify.Queue, which the UI shows as a toast line.
//
// # Listing fetches
//
// Each criteria change begins a ticket on the state.Store from Update,
// cancelling the previous request. The fetch itself runs as a tea.Cmd and
// its result is applied only if its ticket is still the newest one, so a
// slow response can never overwrite the results of a later gesture. The
// detail pane applies the same rule by product id.
//
// # Background changes
//
// Shelf listeners and the notification queue wake the program with a
// message from a fresh goroutine. Listeners may fire inside Update, when a
// gesture mutates a shelf, so they never block on the event loop.
package ui
