package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/belmontfield/dispatch/internal/availability"
	"github.com/belmontfield/dispatch/internal/calendar"
	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/domain"
)

// recordingProvider counts calls and serves canned answers.
type recordingProvider struct {
	listCalls int
	slots     []domain.Slot
}

func (p *recordingProvider) ListBusyWindows(ctx context.Context, window domain.TimeWindow) ([]domain.TimeWindow, error) {
	return nil, nil
}

func (p *recordingProvider) ListAvailability(ctx context.Context, window domain.TimeWindow, slotDuration time.Duration) ([]domain.Slot, error) {
	p.listCalls++
	return p.slots, nil
}

func (p *recordingProvider) BookEvent(ctx context.Context, window domain.TimeWindow, summary, description, attendeeEmail string) (calendar.BookedEvent, error) {
	return calendar.BookedEvent{}, nil
}

func (p *recordingProvider) AppendNotes(ctx context.Context, eventID, notes string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Location:         la,
		BusinessDayStart: "09:00",
		BusinessDayEnd:   "17:00",
		SlotDuration:     time.Hour,
		PastGrace:        24 * time.Hour,
		MaxAdvance:       45 * 24 * time.Hour,
	}
}

func TestEngine_DayWindow(t *testing.T) {
	e := availability.NewEngine(&recordingProvider{}, testConfig())

	w, err := e.DayWindow("tomorrow", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if w.Duration() != 8*time.Hour {
		t.Errorf("default business hours 09:00-17:00 must span 8h, got %v", w.Duration())
	}
	if got := w.Start.In(la); got.Hour() != 9 || got.Minute() != 0 {
		t.Errorf("window must open at 09:00 local, got %v", got)
	}

	override, err := e.DayWindow("tomorrow", "10:00", "12:30")
	if err != nil {
		t.Fatal(err)
	}
	if override.Duration() != 2*time.Hour+30*time.Minute {
		t.Errorf("hour overrides must apply, got %v", override.Duration())
	}
}

func TestEngine_DayWindow_BadClock(t *testing.T) {
	e := availability.NewEngine(&recordingProvider{}, testConfig())

	for _, tc := range [][2]string{{"25:00", ""}, {"", "09:99"}, {"nine", ""}} {
		if _, err := e.DayWindow("tomorrow", tc[0], tc[1]); !errors.Is(err, domain.ErrInvalidWindow) {
			t.Errorf("DayWindow(%q, %q): expected ErrInvalidWindow, got %v", tc[0], tc[1], err)
		}
	}

	// Inverted hours build a degenerate window.
	if _, err := e.DayWindow("tomorrow", "15:00", "10:00"); !errors.Is(err, domain.ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow for inverted hours, got %v", err)
	}
}

func TestEngine_SlotsForWindow_OutOfRange(t *testing.T) {
	p := &recordingProvider{}
	e := availability.NewEngine(p, testConfig())

	start := time.Now().UTC().Add(50 * 24 * time.Hour)
	_, err := e.SlotsForWindow(context.Background(), domain.TimeWindow{Start: start, End: start.Add(time.Hour)}, time.Hour)
	if !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if p.listCalls != 0 {
		t.Error("guardrail rejection must not reach the provider")
	}

	past := time.Now().UTC().Add(-72 * time.Hour)
	_, err = e.SlotsForWindow(context.Background(), domain.TimeWindow{Start: past, End: past.Add(time.Hour)}, time.Hour)
	if !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for the past, got %v", err)
	}
	if p.listCalls != 0 {
		t.Error("guardrail rejection must not reach the provider")
	}
}

func TestEngine_SlotsForWindow_EmptyIsNotError(t *testing.T) {
	p := &recordingProvider{} // no slots
	e := availability.NewEngine(p, testConfig())

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	slots, err := e.SlotsForWindow(context.Background(), domain.TimeWindow{Start: start, End: start.Add(8 * time.Hour)}, time.Hour)
	if err != nil {
		t.Fatalf("no availability must not be an error, got %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %d", len(slots))
	}
	if p.listCalls != 1 {
		t.Errorf("expected one provider call, got %d", p.listCalls)
	}
}

func TestEngine_SlotsForDay(t *testing.T) {
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	p := &recordingProvider{slots: []domain.Slot{{
		TimeWindow: domain.TimeWindow{Start: start, End: start.Add(time.Hour)},
		TechID:     "TECH-07",
		TechName:   "Alex",
	}}}
	e := availability.NewEngine(p, testConfig())

	slots, err := e.SlotsForDay(context.Background(), "tomorrow", "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 || slots[0].TechID != "TECH-07" {
		t.Errorf("expected the provider's slot to pass through, got %v", slots)
	}
}
