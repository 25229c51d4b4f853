package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/belmontfield/dispatch/internal/availability"
	"github.com/belmontfield/dispatch/internal/booking"
	"github.com/belmontfield/dispatch/internal/calendar"
	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/hold"
	dispatchhttp "github.com/belmontfield/dispatch/internal/http"
	"github.com/belmontfield/dispatch/internal/idempotency"
	"github.com/belmontfield/dispatch/internal/observability"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, calendar.NewMock(time.Hour), idempotency.NewIdempotency(nil, time.Hour))
}

func newTestServerWith(t *testing.T, provider calendar.Provider, idemp *idempotency.Idempotency) *httptest.Server {
	t.Helper()

	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Location:         loc,
		Timezone:         "America/Los_Angeles",
		BusinessDayStart: "09:00",
		BusinessDayEnd:   "17:00",
		SlotDuration:     time.Hour,
		HoldTTL:          15 * time.Minute,
		MaxAdvance:       45 * 24 * time.Hour,
		PastGrace:        24 * time.Hour,
	}
	logger := observability.NewLogger()
	engine := availability.NewEngine(provider, cfg)
	registry := hold.NewRegistry(cfg.HoldTTL, logger, nil)
	t.Cleanup(registry.Stop)
	finalizer := booking.NewFinalizer(provider, engine.Bounds(), logger)

	h := dispatchhttp.NewHandlers(cfg, logger, engine, registry, finalizer, provider, nil, nil, nil, nil, idemp)
	srv := httptest.NewServer(dispatchhttp.SetupRouter(h, logger, nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out
}

func isoWindow(offset time.Duration) (string, string) {
	start := time.Now().UTC().Add(offset).Truncate(time.Minute)
	return start.Format(time.RFC3339), start.Add(time.Hour).Format(time.RFC3339)
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv := newTestServer(t)

	start, end := isoWindow(24 * time.Hour)
	status, out := postJSON(t, srv.URL+"/api/availability", fmt.Sprintf(`{"start":%q,"end":%q}`, start, end))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, out)
	}
	if _, ok := out["windows"]; !ok {
		t.Error("expected a windows field")
	}
}

func TestAvailabilityEndpoint_OutOfRange(t *testing.T) {
	srv := newTestServer(t)

	start, end := isoWindow(50 * 24 * time.Hour)
	status, out := postJSON(t, srv.URL+"/api/availability", fmt.Sprintf(`{"start":%q,"end":%q}`, start, end))
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if out["error"] != "date_out_of_range" {
		t.Errorf("expected date_out_of_range, got %v", out["error"])
	}
}

func TestAvailabilityEndpoint_InvalidWindow(t *testing.T) {
	srv := newTestServer(t)

	status, out := postJSON(t, srv.URL+"/api/availability", `{"start":"not-a-time","end":"also-not"}`)
	if status != http.StatusBadRequest || out["error"] != "invalid_window" {
		t.Errorf("expected 400 invalid_window, got %d %v", status, out["error"])
	}
}

func TestSlotsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, out := postJSON(t, srv.URL+"/api/slots", `{"date_text":"tomorrow"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, out)
	}
	if _, ok := out["slots"]; !ok {
		t.Error("expected a slots field")
	}
}

func TestHoldLifecycle(t *testing.T) {
	srv := newTestServer(t)
	start, end := isoWindow(24 * time.Hour)

	status, out := postJSON(t, srv.URL+"/api/holds",
		fmt.Sprintf(`{"phone":"555-123-4567","slot":{"start":%q,"end":%q},"metadata":{"symptom":"no_cool"}}`, start, end))
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, out)
	}
	first := out["hold"].(map[string]interface{})
	firstID := first["hold_id"].(string)
	if first["status"] != "held" {
		t.Errorf("expected held, got %v", first["status"])
	}
	if _, ok := out["superseded_hold_id"]; ok {
		t.Error("first hold must not report a supersession")
	}

	// Same customer holds a different slot: supersession.
	start2, end2 := isoWindow(48 * time.Hour)
	status, out = postJSON(t, srv.URL+"/api/holds",
		fmt.Sprintf(`{"phone":"(555) 123-4567","slot":{"start":%q,"end":%q}}`, start2, end2))
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, out)
	}
	if out["superseded_hold_id"] != firstID {
		t.Errorf("expected superseded id %s, got %v", firstID, out["superseded_hold_id"])
	}
	secondID := out["hold"].(map[string]interface{})["hold_id"].(string)

	// The superseded hold is released, the new one held.
	resp, err := http.Get(srv.URL + "/api/holds/" + firstID)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got["hold"].(map[string]interface{})["status"] != "released" {
		t.Error("superseded hold must be released")
	}

	status, out = postJSON(t, srv.URL+"/api/holds/"+secondID+"/confirm", `{}`)
	if status != http.StatusOK || out["hold"].(map[string]interface{})["status"] != "confirmed" {
		t.Errorf("expected confirmed, got %d %v", status, out)
	}

	// Unknown id is 404, not an error payload.
	status, _ = postJSON(t, srv.URL+"/api/holds/no-such-id/release", `{}`)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for unknown hold, got %d", status)
	}
}

func TestBookingEndpoint(t *testing.T) {
	srv := newTestServer(t)
	start, end := isoWindow(24 * time.Hour)

	body := fmt.Sprintf(`{
		"window": {"start": %q, "end": %q},
		"customer": {"full_name": "Jane Doe", "phone": "5551234567", "email": "jane@example.com"},
		"location": {"address_line1": "12 Oak St", "city": "Belmont", "zip": "94002"},
		"job": {"symptom": "no_cool", "issue_summary": "AC out upstairs"}
	}`, start, end)

	status, out := postJSON(t, srv.URL+"/api/bookings", body)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, out)
	}
	if out["status"] != "confirmed" {
		t.Errorf("expected confirmed, got %v", out["status"])
	}
	id, _ := out["booking_id"].(string)
	if !strings.HasPrefix(id, "BK-") {
		t.Errorf("expected a BK- booking id, got %q", id)
	}
	if !strings.HasSuffix(out["ics_url"].(string), ".ics") {
		t.Errorf("expected an ics link, got %v", out["ics_url"])
	}
}

func TestBookingEndpoint_TooFarOut(t *testing.T) {
	srv := newTestServer(t)
	start, end := isoWindow(60 * 24 * time.Hour)

	body := fmt.Sprintf(`{"window":{"start":%q,"end":%q},"customer":{"full_name":"Jane","phone":"5551234567"}}`, start, end)
	status, out := postJSON(t, srv.URL+"/api/bookings", body)
	if status != http.StatusBadRequest || out["error"] != "date_out_of_range" {
		t.Errorf("expected 400 date_out_of_range, got %d %v", status, out["error"])
	}
}

func TestServiceAreaEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, out := postJSON(t, srv.URL+"/api/service-area/check", `{"zip":"nine four zero oh two"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if out["ok"] != true || out["zone_id"] != "ZONE-A" || out["city"] != "Belmont" {
		t.Errorf("expected ZONE-A Belmont, got %v", out)
	}

	status, out = postJSON(t, srv.URL+"/api/service-area/check", `{"zip":"90210"}`)
	if status != http.StatusOK || out["ok"] != false || out["reason"] != "out_of_area" {
		t.Errorf("expected out_of_area, got %d %v", status, out)
	}
}

func TestTriageEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, out := postJSON(t, srv.URL+"/api/triage", `{"text":"carbon monoxide alarm going off"}`)
	if status != http.StatusOK || out["emergency"] != true {
		t.Errorf("expected an emergency triage, got %d %v", status, out)
	}
}

func TestEstimateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, out := postJSON(t, srv.URL+"/api/estimate", `{"zip":"94010"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if out["visit_fee"] != float64(99) {
		t.Errorf("expected extended-zone visit fee, got %v", out["visit_fee"])
	}
}

func TestContextEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/context")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["timezone"] != "America/Los_Angeles" {
		t.Errorf("expected the business timezone, got %v", out["timezone"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
