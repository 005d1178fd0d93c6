package rcftree

// leafBook is per-leaf bookkeeping: a duplicate-count ("mass") per
// point index, and — when sequence tracking is enabled — a multiset of sequence
// indices observed at that point, so that distinct occurrences of the same point
// value can be told apart and individually deleted.
type leafBook struct {
	mass           map[int]int           // stored value is actual-1; absent means mass 1
	sequences      map[int]map[int64]int // pointIndex -> sequenceIndex -> count
	storeSequences bool
}

func newLeafBook(storeSequences bool) *leafBook {
	lb := &leafBook{
		mass:           make(map[int]int),
		storeSequences: storeSequences,
	}
	if storeSequences {
		lb.sequences = make(map[int]map[int64]int)
	}
	return lb
}

// addLeaf registers a new occurrence of pointIndex at sequence seq (if sequence
// tracking is on) and returns the leaf's composite index.
func (lb *leafBook) addLeaf(pointIndex int, seq int64, capacity int) NodeIndex {
	if lb.storeSequences {
		m, ok := lb.sequences[pointIndex]
		if !ok {
			m = make(map[int64]int)
			lb.sequences[pointIndex] = m
		}
		m[seq]++
	}
	return leafIndexFor(pointIndex, capacity)
}

// removeLeaf decrements the sequence multiset entry for (pointIndex, seq). It is a
// fatal contract violation (missing leaf) to call this for an entry that is not
// present, because the coordinator and the tree are expected to stay consistent.
func (lb *leafBook) removeLeaf(pointIndex int, seq int64) {
	if !lb.storeSequences {
		return
	}
	m, ok := lb.sequences[pointIndex]
	if !ok {
		panic(ContractViolation{Message: (&MissingLeafError{PointIndex: pointIndex, SequenceIndex: seq}).Error()})
	}
	cnt, ok := m[seq]
	if !ok || cnt <= 0 {
		panic(ContractViolation{Message: (&MissingLeafError{PointIndex: pointIndex, SequenceIndex: seq}).Error()})
	}
	if cnt == 1 {
		delete(m, seq)
		if len(m) == 0 {
			delete(lb.sequences, pointIndex)
		}
	} else {
		m[seq] = cnt - 1
	}
}

// getLeafMass returns the stored duplicate count + 1 (mass is never less than 1).
func (lb *leafBook) getLeafMass(leafIdx NodeIndex, capacity int) int {
	p := pointIndexOf(leafIdx, capacity)
	return lb.mass[p] + 1
}

func (lb *leafBook) increaseLeafMass(leafIdx NodeIndex, capacity int) {
	p := pointIndexOf(leafIdx, capacity)
	lb.mass[p]++
}

// decreaseLeafMass removes one occurrence and returns the new actual mass,
// which may be zero — the caller's signal to unlink the leaf entirely. A mass
// map entry is only ever a record of "more than one occurrence"; there is no
// representation for zero, so the entry is deleted rather than driven negative.
func (lb *leafBook) decreaseLeafMass(leafIdx NodeIndex, capacity int) int {
	p := pointIndexOf(leafIdx, capacity)
	stored := lb.mass[p]
	switch stored {
	case 0:
		delete(lb.mass, p)
		return 0
	case 1:
		delete(lb.mass, p)
	default:
		lb.mass[p] = stored - 1
	}
	return stored
}
