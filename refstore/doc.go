/*
Package refstore is a minimal reference implementation of rcftree's PointStoreView
and Coordinator interfaces, sufficient to drive a tree end to end in tests and
small standalone programs: a flat slice of vectors with reference counting and
a free-slot reuse list, and a single-tree coordinator that stores an incoming
point once and reconciles its reference count after Update runs.

Production forests will generally bring their own point store (shared across
many trees, often with compression or paging); this package exists so rcftree
itself is independently exercisable.
*/
package refstore

import "github.com/npillmayer/schuko/tracing"

func tracer() tracing.Trace {
	return tracing.Select("rcftree.refstore")
}
