// Package state holds the product listing shown by the catalog view.
//
// # Overview
//
// Listing fetches run on their own goroutines while the user keeps editing
// filters, so responses can arrive out of order. Store makes the ordering
// explicit: every fetch begins with Begin, which stamps a Ticket with a new
// sequence number and cancels the previous fetch's context, and ends with
// Complete, which applies the response only if its ticket is still current.
//
//	Begin(q1) -> t1        Begin(q2) -> t2 (t1.Ctx cancelled)
//	Complete(t2, page) -> applied
//	Complete(t1, page) -> discarded
//
// # Snapshots
//
// Snapshot returns a defensive copy: the results slice is cloned and the last
// error is rewrapped so callers never share mutable state with the store. On a
// failed fetch the previous results stay visible and LastError is set;
// ConsecutiveFailures drives the offline indicator.
//
// Remote failures are never retried here. The view offers a manual reload.
//
// # Testing Considerations
//
// The zero Store is ready to use.
package state
