package domain

import (
	"iter"
	"time"
)

// TimeWindow is a half-open interval [Start, End) in UTC.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w TimeWindow) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && w.End.After(w.Start)
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether the two half-open windows intersect.
// Touching endpoints (w.End == other.Start) do not count as overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Slots slices w into consecutive, gapless windows of the given duration,
// starting at w.Start. A partial trailing slot is never emitted. The sequence
// is restartable: every range loop walks it from the beginning.
func (w TimeWindow) Slots(duration time.Duration) iter.Seq[TimeWindow] {
	return func(yield func(TimeWindow) bool) {
		if duration <= 0 {
			return
		}
		for cur := w.Start; !cur.Add(duration).After(w.End); cur = cur.Add(duration) {
			if !yield(TimeWindow{Start: cur, End: cur.Add(duration)}) {
				return
			}
		}
	}
}

// FilterFree drops every slot that overlaps any busy window. Quadratic in
// slots x busy, which is fine for one calendar over a single day.
func FilterFree(slots iter.Seq[TimeWindow], busy []TimeWindow) iter.Seq[TimeWindow] {
	return func(yield func(TimeWindow) bool) {
		for s := range slots {
			conflict := false
			for _, b := range busy {
				if s.Overlaps(b) {
					conflict = true
					break
				}
			}
			if !conflict && !yield(s) {
				return
			}
		}
	}
}
