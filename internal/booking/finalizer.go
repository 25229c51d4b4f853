// Package booking commits a validated window to the calendar. Holds are
// advisory and scoped to this process, so the finalizer always re-checks the
// window against the provider immediately before writing.
package booking

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/belmontfield/dispatch/internal/calendar"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/observability"
)

type Finalizer struct {
	provider calendar.Provider
	bounds   domain.BoundsPolicy
	logger   observability.Logger
	now      func() time.Time
}

func NewFinalizer(provider calendar.Provider, bounds domain.BoundsPolicy, logger observability.Logger) *Finalizer {
	return &Finalizer{provider: provider, bounds: bounds, logger: logger, now: time.Now}
}

// Finalize runs the hard gates in order: window shape and booking bounds,
// busy-window re-check, then the provider write. A conflict aborts before any
// event is created and carries the busy window so the caller can offer an
// alternative.
func (f *Finalizer) Finalize(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	if err := f.bounds.Check(f.now(), req.Window); err != nil {
		return domain.Booking{}, err
	}

	busy, err := f.provider.ListBusyWindows(ctx, req.Window)
	if err != nil {
		return domain.Booking{}, err
	}
	for _, b := range busy {
		if b.Overlaps(req.Window) {
			observability.SlotConflicts.Inc()
			observability.BookingOutcomes.WithLabelValues("conflict").Inc()
			return domain.Booking{}, &domain.ConflictError{Busy: b}
		}
	}

	summary := composeSummary(req)
	description := composeDescription(req)
	attendee := NormalizeEmail(req.Customer.Email)

	ev, err := f.provider.BookEvent(ctx, req.Window, summary, description, attendee)
	if err != nil {
		observability.BookingOutcomes.WithLabelValues("failed").Inc()
		return domain.Booking{}, errors.Mark(err, domain.ErrBookingFailed)
	}

	observability.BookingOutcomes.WithLabelValues("confirmed").Inc()
	f.logger.WithField("event_ref", ev.ID).Info("booking confirmed")
	return domain.Booking{
		ID:              ev.ID,
		Window:          req.Window,
		Status:          "confirmed",
		EventRef:        ev.ID,
		ConfirmationURL: ev.ConfirmationURL,
	}, nil
}
