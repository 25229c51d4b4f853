package calendar_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/belmontfield/dispatch/internal/calendar"
	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/observability"
)

func TestMock_ListAvailability(t *testing.T) {
	fixed := time.Date(2026, time.September, 14, 10, 0, 0, 0, time.UTC)
	p := calendar.NewMockAt(time.Hour, func() time.Time { return fixed })

	window := domain.TimeWindow{Start: fixed, End: fixed.Add(48 * time.Hour)}
	slots, err := p.ListAvailability(context.Background(), window, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 canned slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(fixed.Add(2 * time.Hour)) {
		t.Errorf("first slot must be two hours out, got %v", slots[0].Start)
	}
	if slots[0].TechID != "TECH-07" || slots[1].TechID != "TECH-12" {
		t.Errorf("unexpected tech assignments: %s, %s", slots[0].TechID, slots[1].TechID)
	}
	for _, s := range slots {
		if s.Duration() != time.Hour {
			t.Errorf("slot duration must match the request, got %v", s.Duration())
		}
	}

	// Same pinned clock, same answer.
	again, err := p.ListAvailability(context.Background(), window, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 2 || !again[0].Start.Equal(slots[0].Start) {
		t.Error("the mock must be deterministic under a pinned clock")
	}
}

func TestMock_Book(t *testing.T) {
	p := calendar.NewMock(time.Hour)

	start := time.Now().UTC().Add(2 * time.Hour)
	ev, err := p.BookEvent(context.Background(), domain.TimeWindow{Start: start, End: start.Add(time.Hour)}, "HVAC no_cool - Jane", "details", "jane@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(ev.ID, "BK-") {
		t.Errorf("expected a BK- booking reference, got %q", ev.ID)
	}
	if !strings.HasSuffix(ev.ConfirmationURL, ".ics") {
		t.Errorf("expected an ics confirmation link, got %q", ev.ConfirmationURL)
	}

	busy, err := p.ListBusyWindows(context.Background(), domain.TimeWindow{Start: start, End: start.Add(time.Hour)})
	if err != nil || len(busy) != 0 {
		t.Errorf("the mock calendar is always clear, got %v, %v", busy, err)
	}
}

func TestNew_SelectsMockWithoutCredentials(t *testing.T) {
	cfg := &config.Config{SlotDuration: time.Hour}
	p, err := calendar.New(context.Background(), cfg, observability.NewLogger())
	if err != nil {
		t.Fatal(err)
	}
	// The mock serves without any external call.
	start := time.Now().UTC().Add(2 * time.Hour)
	if _, err := p.ListBusyWindows(context.Background(), domain.TimeWindow{Start: start, End: start.Add(time.Hour)}); err != nil {
		t.Errorf("expected the offline variant, got %v", err)
	}
}
