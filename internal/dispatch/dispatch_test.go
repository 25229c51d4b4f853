package dispatch_test

import (
	"testing"

	"github.com/belmontfield/dispatch/internal/dispatch"
)

func TestNormalizeZip(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"94002", "94002"},
		{"nine four zero oh two", "94002"},
		{"nine four oh one oh", "94010"},
		{"it's 94002 I think", "94002"},
		{"94002-1234", "94002"},
		{"nine four", "94"},
		{"", ""},
	}
	for _, c := range cases {
		if got := dispatch.NormalizeZip(c.in); got != c.want {
			t.Errorf("NormalizeZip(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFindZone(t *testing.T) {
	zm := dispatch.ParseZones("")

	id, zone, ok := zm.FindZone("94002")
	if !ok || id != "ZONE-A" {
		t.Fatalf("expected 94002 in ZONE-A, got %q ok=%v", id, ok)
	}
	if zone.VisitFee != 89 {
		t.Errorf("expected core visit fee 89, got %d", zone.VisitFee)
	}

	id, _, ok = zm.FindZone("nine four zero one zero")
	if !ok || id != "ZONE-B" {
		t.Errorf("spoken-form ZIP must resolve, expected ZONE-B, got %q ok=%v", id, ok)
	}

	if _, _, ok := zm.FindZone("90210"); ok {
		t.Error("out-of-area ZIP must not match a zone")
	}
}

func TestParseZones_Override(t *testing.T) {
	zm := dispatch.ParseZones(`{"ZONE-X":{"name":"Test","zips":["11111"],"visit_fee":10,"after_hours_fee":5,"sla_hours":8}}`)
	if _, _, ok := zm.FindZone("11111"); !ok {
		t.Error("override zone must be used")
	}
	if _, _, ok := zm.FindZone("94002"); ok {
		t.Error("override replaces the defaults entirely")
	}

	// Malformed JSON falls back to the built-in map.
	zm = dispatch.ParseZones(`{"broken`)
	if _, _, ok := zm.FindZone("94002"); !ok {
		t.Error("malformed override must fall back to defaults")
	}
}

func TestCityForZip(t *testing.T) {
	if got := dispatch.CityForZip("94002"); got != "Belmont" {
		t.Errorf("expected Belmont, got %q", got)
	}
	if got := dispatch.CityForZip("nine four zero zero two"); got != "Belmont" {
		t.Errorf("spoken ZIP must resolve to Belmont, got %q", got)
	}
	if got := dispatch.CityForZip("00000"); got != "Unknown" {
		t.Errorf("unknown ZIP must report Unknown, got %q", got)
	}
}

func TestPlanJob(t *testing.T) {
	std := dispatch.PlanJob("no_cool")
	if std.DurationMin != 60 {
		t.Errorf("standard symptom must plan 60 minutes, got %d", std.DurationMin)
	}
	for _, symptom := range []string{"leak", "frozen", "no_power"} {
		long := dispatch.PlanJob(symptom)
		if long.DurationMin != 90 {
			t.Errorf("%s must plan 90 minutes, got %d", symptom, long.DurationMin)
		}
	}
	if std.Priority != "SOON" || len(std.RouteTags) != 2 {
		t.Errorf("unexpected plan defaults: %+v", std)
	}
}

func TestEstimatePrice(t *testing.T) {
	zm := dispatch.ParseZones("")

	core := dispatch.EstimatePrice(zm, "94002")
	if core.VisitFee != 89 || core.AfterHoursFee != 49 {
		t.Errorf("expected core fees 89/49, got %d/%d", core.VisitFee, core.AfterHoursFee)
	}
	if core.RangeLow != 140 || core.RangeHigh != 420 {
		t.Errorf("expected diagnostic range 140-420, got %d-%d", core.RangeLow, core.RangeHigh)
	}

	extended := dispatch.EstimatePrice(zm, "94010")
	if extended.VisitFee != 99 || extended.AfterHoursFee != 69 {
		t.Errorf("expected extended fees 99/69, got %d/%d", extended.VisitFee, extended.AfterHoursFee)
	}

	outside := dispatch.EstimatePrice(zm, "90210")
	if outside.VisitFee != 89 {
		t.Errorf("out-of-area ZIP must fall back to core fees, got %d", outside.VisitFee)
	}

	none := dispatch.EstimatePrice(zm, "")
	if none.VisitFee != 89 || none.AfterHoursFee != 49 {
		t.Errorf("missing ZIP must use core fees, got %d/%d", none.VisitFee, none.AfterHoursFee)
	}
}

func TestTriage(t *testing.T) {
	cases := []struct {
		text      string
		emergency bool
		priority  bool
	}{
		{"there is a gas smell in the basement", true, false},
		{"the carbon monoxide alarm went off", true, false},
		{"no heat and we have an infant at home", true, true},
		{"the furnace is not working", false, true},
		{"AC broken since yesterday", false, true},
		{"there's a burning smell from the vents", false, true},
		{"maybe the furnace is not working, not sure", false, false},
		{"annual maintenance please", false, false},
		{"", false, false},
	}
	for _, c := range cases {
		got := dispatch.Triage(c.text)
		if got.Emergency != c.emergency || got.Priority != c.priority {
			t.Errorf("Triage(%q) = %+v, want emergency=%v priority=%v", c.text, got, c.emergency, c.priority)
		}
	}
}
