package rcftree

import "errors"

// ErrCapacityExhausted is returned by the free-index manager (and bubbled up through
// Update) when no interior slot remains. Unlike a contract violation this is an
// expected, recoverable condition, signaled distinctly from contract violations:
// the forest-level caller is expected to evict before the next insert.
var ErrCapacityExhausted = errors.New("rcftree: no free interior-node slot available")

// ErrAlreadyFree is returned by the free-index manager's release when the given slot
// is already marked free — an internal bookkeeping inconsistency.
var ErrAlreadyFree = errors.New("rcftree: interior slot already free")

// MissingLeafError describes a point/sequence pair that is not present when
// removeLeaf (or Delete) runs. It is a fatal contract violation (the coordinator
// and the tree are expected to stay consistent), so it is never returned as a
// plain error: the tree panics with a ContractViolation whose Message is this
// error's text. The MissingLeafError value itself is not attached to the panic.
type MissingLeafError struct {
	PointIndex    int
	SequenceIndex int64
}

func (e *MissingLeafError) Error() string {
	return "rcftree: missing leaf/sequence entry for point"
}
