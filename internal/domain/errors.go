package domain

import "github.com/cockroachdb/errors"

var (
	ErrInvalidWindow       = errors.New("invalid window")
	ErrOutOfRange          = errors.New("window out of booking range")
	ErrInvalidSlot         = errors.New("invalid slot")
	ErrSlotConflict        = errors.New("slot conflict")
	ErrProviderUnavailable = errors.New("calendar provider unavailable")
	ErrBookingFailed       = errors.New("booking failed")
	ErrNotFound            = errors.New("not found")
)

// ConflictError carries the busy window that blocked a booking so the caller
// can offer an alternative. errors.Is(err, ErrSlotConflict) holds.
type ConflictError struct {
	Busy TimeWindow
}

func (e *ConflictError) Error() string {
	return "slot conflict: busy " + e.Busy.Start.String() + " - " + e.Busy.End.String()
}

func (e *ConflictError) Unwrap() error {
	return ErrSlotConflict
}
