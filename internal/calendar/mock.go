package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/belmontfield/dispatch/internal/domain"
)

// mockProvider stands in when no calendar credentials are configured. It
// reports an empty calendar, offers a small canned set of slots relative to
// now, and synthesizes booking confirmations without any external call.
type mockProvider struct {
	slotDuration time.Duration
	now          func() time.Time
}

func NewMock(slotDuration time.Duration) Provider {
	return &mockProvider{slotDuration: slotDuration, now: time.Now}
}

// NewMockAt pins the mock's clock, for tests.
func NewMockAt(slotDuration time.Duration, now func() time.Time) Provider {
	return &mockProvider{slotDuration: slotDuration, now: now}
}

func (m *mockProvider) ListBusyWindows(ctx context.Context, window domain.TimeWindow) ([]domain.TimeWindow, error) {
	return nil, nil
}

func (m *mockProvider) ListAvailability(ctx context.Context, window domain.TimeWindow, slotDuration time.Duration) ([]domain.Slot, error) {
	if slotDuration <= 0 {
		slotDuration = m.slotDuration
	}
	now := m.now().UTC()
	mk := func(fromNow time.Duration, techID, techName string) domain.Slot {
		start := now.Add(fromNow).Truncate(time.Minute)
		return domain.Slot{
			TimeWindow: domain.TimeWindow{Start: start, End: start.Add(slotDuration)},
			TechID:     techID,
			TechName:   techName,
		}
	}
	return []domain.Slot{
		mk(2*time.Hour, "TECH-07", "Alex"),
		mk(32*time.Hour, "TECH-12", "Sam"),
	}, nil
}

func (m *mockProvider) BookEvent(ctx context.Context, window domain.TimeWindow, summary, description, attendeeEmail string) (BookedEvent, error) {
	id := "BK-" + uuid.New().String()
	return BookedEvent{
		ID:              id,
		ConfirmationURL: "https://ics.belmontfield.example/" + id + ".ics",
	}, nil
}

func (m *mockProvider) AppendNotes(ctx context.Context, eventID, notes string) error {
	return nil
}
