package domain

import "time"

// BoundsPolicy bounds acceptable booking windows: not too far in the past
// (a small grace absorbs timezone slop) and not too far ahead. The same rule
// gates availability queries and booking finalization.
type BoundsPolicy struct {
	PastGrace  time.Duration
	MaxAdvance time.Duration
}

func (p BoundsPolicy) Check(now time.Time, w TimeWindow) error {
	if !w.Valid() {
		return ErrInvalidWindow
	}
	if w.Start.Before(now.Add(-p.PastGrace)) {
		return ErrOutOfRange
	}
	if w.End.Sub(now) > p.MaxAdvance {
		return ErrOutOfRange
	}
	return nil
}
