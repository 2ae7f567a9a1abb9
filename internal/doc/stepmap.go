package doc

// MapResult is a position carried through an edit: its location in the
// new snapshot, and whether the content it pointed into was removed.
type MapResult struct {
	Pos     int
	Deleted bool
}

type mapRange struct {
	start   int // in pre-step coordinates
	oldSize int
	newSize int
}

// StepMap describes how one step moves positions: a sorted list of
// replaced ranges in pre-step coordinates.
type StepMap struct {
	ranges []mapRange
}

var emptyStepMap = &StepMap{}

func newStepMap(start, oldSize, newSize int) *StepMap {
	return &StepMap{ranges: []mapRange{{start: start, oldSize: oldSize, newSize: newSize}}}
}

// Map carries pos through the step. assoc decides which side of an
// insertion at exactly pos the result associates with: negative stays
// before it, positive moves after it.
func (m *StepMap) Map(pos, assoc int) MapResult {
	diff := 0
	for _, r := range m.ranges {
		if r.start > pos {
			break
		}
		end := r.start + r.oldSize
		if pos <= end {
			side := assoc
			if r.oldSize != 0 {
				if pos == r.start {
					side = -1
				} else if pos == end {
					side = 1
				}
			}
			result := r.start + diff
			if side > 0 {
				result += r.newSize
			}
			return MapResult{Pos: result, Deleted: pos > r.start && pos < end}
		}
		diff += r.newSize - r.oldSize
	}
	return MapResult{Pos: pos + diff}
}

// Mapping composes the step maps of an edit, in step order.
type Mapping []*StepMap

// Map carries pos through every step of the edit. Deleted is sticky:
// once a step removes the position's content it stays deleted even
// though a best-effort location is still reported.
func (m Mapping) Map(pos, assoc int) MapResult {
	deleted := false
	for _, sm := range m {
		r := sm.Map(pos, assoc)
		pos = r.Pos
		deleted = deleted || r.Deleted
	}
	return MapResult{Pos: pos, Deleted: deleted}
}
