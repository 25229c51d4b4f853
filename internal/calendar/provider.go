// Package calendar abstracts the external calendar backend behind a small
// capability interface. Exactly one variant is active per process: the live
// Google Calendar client when OAuth credentials are configured, otherwise a
// deterministic mock. Callers never branch on which variant they got.
package calendar

import (
	"context"
	"time"

	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/observability"
)

// BookedEvent is the provider's receipt for a created calendar event.
type BookedEvent struct {
	ID              string
	ConfirmationURL string
}

type Provider interface {
	// ListBusyWindows returns the committed intervals overlapping the window.
	ListBusyWindows(ctx context.Context, window domain.TimeWindow) ([]domain.TimeWindow, error)

	// ListAvailability slices the window into slots of the given duration and
	// drops the ones that overlap a busy window.
	ListAvailability(ctx context.Context, window domain.TimeWindow, slotDuration time.Duration) ([]domain.Slot, error)

	// BookEvent creates a calendar event for the window.
	BookEvent(ctx context.Context, window domain.TimeWindow, summary, description, attendeeEmail string) (BookedEvent, error)

	// AppendNotes adds notes to an existing event. Best effort: callers log
	// failures and move on, they never fail the surrounding flow.
	AppendNotes(ctx context.Context, eventID, notes string) error
}

// New selects the provider variant from credential presence.
func New(ctx context.Context, cfg *config.Config, logger observability.Logger) (Provider, error) {
	if cfg.GoogleConfigured() {
		return NewGoogle(ctx, cfg)
	}
	logger.Warn("google calendar not configured, using mock provider")
	return NewMock(cfg.SlotDuration), nil
}
