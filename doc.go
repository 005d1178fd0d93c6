/*
Package rcftree implements the interior-node store and traversal engine of a single
Random Cut Forest tree: a bounded arena of column-stored interior nodes, a partial
bounding-box cache, an in-place update engine for the sliding-window insert/delete
cycle, and the scoring and visitor traversals built on top of it.

The forest-level coordinator, the point store, and the cut-drawing policy are
external collaborators, consumed here only through the interfaces in pointstore.go
and cutpolicy.go.
*/
package rcftree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'rcftree'.
func tracer() tracing.Trace {
	return tracing.Select("rcftree")
}
