// Package availability turns date expressions and business-hours bounds into
// concrete free slots against the calendar provider.
package availability

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/belmontfield/dispatch/internal/calendar"
	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/observability"
)

type Engine struct {
	provider calendar.Provider
	loc      *time.Location
	bounds   domain.BoundsPolicy
	dayStart string
	dayEnd   string
	duration time.Duration
	now      func() time.Time
}

func NewEngine(provider calendar.Provider, cfg *config.Config) *Engine {
	return &Engine{
		provider: provider,
		loc:      cfg.Location,
		bounds:   domain.BoundsPolicy{PastGrace: cfg.PastGrace, MaxAdvance: cfg.MaxAdvance},
		dayStart: cfg.BusinessDayStart,
		dayEnd:   cfg.BusinessDayEnd,
		duration: cfg.SlotDuration,
		now:      time.Now,
	}
}

// DayWindow resolves a date expression plus optional business-hours overrides
// into a concrete window in the business timezone.
func (e *Engine) DayWindow(expr, startLocal, endLocal string) (domain.TimeWindow, error) {
	day, err := ResolveDay(expr, e.now(), e.loc)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	if startLocal == "" {
		startLocal = e.dayStart
	}
	if endLocal == "" {
		endLocal = e.dayEnd
	}
	sh, sm, err := parseClock(startLocal)
	if err != nil {
		return domain.TimeWindow{}, errors.Mark(err, domain.ErrInvalidWindow)
	}
	eh, em, err := parseClock(endLocal)
	if err != nil {
		return domain.TimeWindow{}, errors.Mark(err, domain.ErrInvalidWindow)
	}
	w := domain.TimeWindow{
		Start: time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, e.loc).UTC(),
		End:   time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, e.loc).UTC(),
	}
	if !w.Valid() {
		return domain.TimeWindow{}, domain.ErrInvalidWindow
	}
	return w, nil
}

// SlotsForDay resolves the expression and lists free slots within business
// hours. An empty result is a normal outcome, not an error.
func (e *Engine) SlotsForDay(ctx context.Context, expr, startLocal, endLocal string, duration time.Duration) ([]domain.Slot, error) {
	w, err := e.DayWindow(expr, startLocal, endLocal)
	if err != nil {
		return nil, err
	}
	return e.SlotsForWindow(ctx, w, duration)
}

// SlotsForWindow lists free slots for an explicit window after checking the
// booking bounds.
func (e *Engine) SlotsForWindow(ctx context.Context, w domain.TimeWindow, duration time.Duration) ([]domain.Slot, error) {
	observability.AvailabilityQueries.Inc()
	if duration <= 0 {
		duration = e.duration
	}
	if err := e.bounds.Check(e.now(), w); err != nil {
		return nil, err
	}
	return e.provider.ListAvailability(ctx, w, duration)
}

// Bounds exposes the guardrail policy so the finalizer applies the same rule.
func (e *Engine) Bounds() domain.BoundsPolicy {
	return e.bounds
}
