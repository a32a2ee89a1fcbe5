// Package shelf implements the persisted bounded sets behind the compare and
// wishlist views.
//
// A Store holds at most Capacity unique items in insertion order and writes a
// snapshot to storage after every change. It moves through three states:
//
//	Uninitialized --Initialize--> Hydrating --read done--> Ready
//
// Only Ready applies mutations. Earlier calls return Deferred and are replayed,
// in order, against the hydrated contents as soon as the read completes, so a
// write can never land before the persisted snapshot has been loaded.
//
// A full shelf, a duplicate add, and a missing id are reported as Outcome
// values. Storage failures are logged and the in-memory set stays
// authoritative for the session.
package shelf
