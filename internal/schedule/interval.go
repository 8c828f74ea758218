package schedule

// Interval is a half-open window of whole hours: available from Start
// inclusive to End exclusive, with 0 <= Start < End <= 24.
type Interval struct {
	Start int
	End   int
}

// Intersect returns every non-empty pairwise overlap between two interval
// sets: (max of starts, min of ends) for each pair where that still leaves
// a positive width. Output is not merged; since each person declares at
// most one window per day, folds across a team yield at most one interval
// per day in practice.
func Intersect(a, b []Interval) []Interval {
	var out []Interval
	for _, x := range a {
		for _, y := range b {
			low := max(x.Start, y.Start)
			high := min(x.End, y.End)
			if low < high {
				out = append(out, Interval{Start: low, End: high})
			}
		}
	}
	return out
}

// Contains reports whether the slot lies entirely within this interval.
func (iv Interval) Contains(slot Interval) bool {
	return slot.Start >= iv.Start && slot.End <= iv.End
}

// Overlaps reports whether the slot shares at least one hour with this
// interval.
func (iv Interval) Overlaps(slot Interval) bool {
	return max(iv.Start, slot.Start) < min(iv.End, slot.End)
}

// Fits reports whether a proposed slot is compatible with a day's common
// availability. By default the slot must be fully contained within a single
// common interval; with allowPartial set, any overlap counts.
func Fits(slot Interval, common []Interval, allowPartial bool) bool {
	for _, iv := range common {
		if allowPartial {
			if iv.Overlaps(slot) {
				return true
			}
		} else if iv.Contains(slot) {
			return true
		}
	}
	return false
}
