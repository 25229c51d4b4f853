package calendar

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/observability"
)

// googleProvider talks to one business calendar via the Calendar v3 API,
// authenticated with a long-lived OAuth refresh token.
type googleProvider struct {
	svc        *gcal.Service
	calendarID string
}

func NewGoogle(ctx context.Context, cfg *config.Config) (Provider, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     googleoauth.Endpoint,
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})
	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, errors.Mark(err, domain.ErrProviderUnavailable)
	}
	return &googleProvider{svc: svc, calendarID: cfg.CalendarID}, nil
}

func (p *googleProvider) ListBusyWindows(ctx context.Context, window domain.TimeWindow) ([]domain.TimeWindow, error) {
	timer := prometheusTimer("list_busy")
	defer timer()

	resp, err := p.svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: window.Start.Format(time.RFC3339),
		TimeMax: window.End.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: p.calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, errors.Mark(err, domain.ErrProviderUnavailable)
	}

	cal, ok := resp.Calendars[p.calendarID]
	if !ok {
		return nil, nil
	}
	busy := make([]domain.TimeWindow, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		start, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			return nil, errors.Wrapf(err, "busy window start %q", b.Start)
		}
		end, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			return nil, errors.Wrapf(err, "busy window end %q", b.End)
		}
		busy = append(busy, domain.TimeWindow{Start: start.UTC(), End: end.UTC()})
	}
	return busy, nil
}

func (p *googleProvider) ListAvailability(ctx context.Context, window domain.TimeWindow, slotDuration time.Duration) ([]domain.Slot, error) {
	busy, err := p.ListBusyWindows(ctx, window)
	if err != nil {
		return nil, err
	}
	var slots []domain.Slot
	for w := range domain.FilterFree(window.Slots(slotDuration), busy) {
		slots = append(slots, domain.Slot{TimeWindow: w, TechID: "AUTO", TechName: "Dispatch"})
	}
	return slots, nil
}

func (p *googleProvider) BookEvent(ctx context.Context, window domain.TimeWindow, summary, description, attendeeEmail string) (BookedEvent, error) {
	timer := prometheusTimer("book_event")
	defer timer()

	event := &gcal.Event{
		Summary:     summary,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: window.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: window.End.Format(time.RFC3339)},
	}
	if attendeeEmail != "" {
		event.Attendees = []*gcal.EventAttendee{{Email: attendeeEmail}}
	}
	created, err := p.svc.Events.Insert(p.calendarID, event).Context(ctx).Do()
	if err != nil {
		return BookedEvent{}, errors.Mark(err, domain.ErrBookingFailed)
	}
	return BookedEvent{ID: created.Id, ConfirmationURL: created.HtmlLink}, nil
}

func (p *googleProvider) AppendNotes(ctx context.Context, eventID, notes string) error {
	existing, err := p.svc.Events.Get(p.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return errors.Mark(err, domain.ErrProviderUnavailable)
	}
	next := notes
	if existing.Description != "" {
		next = existing.Description + "\n\n" + notes
	}
	_, err = p.svc.Events.Patch(p.calendarID, eventID, &gcal.Event{Description: next}).Context(ctx).Do()
	return err
}

func prometheusTimer(op string) func() {
	start := time.Now()
	return func() {
		observability.ProviderCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
