package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	mongoadapter "github.com/belmontfield/dispatch/internal/adapters/mongo"
	"github.com/belmontfield/dispatch/internal/adapters/postgres"
	"github.com/belmontfield/dispatch/internal/adapters/rabbit"
	"github.com/belmontfield/dispatch/internal/availability"
	"github.com/belmontfield/dispatch/internal/booking"
	"github.com/belmontfield/dispatch/internal/calendar"
	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/dispatch"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/hold"
	"github.com/belmontfield/dispatch/internal/idempotency"
	"github.com/belmontfield/dispatch/internal/intake"
	"github.com/belmontfield/dispatch/internal/observability"
)

type Handlers struct {
	cfg       *config.Config
	logger    observability.Logger
	engine    *availability.Engine
	holds     *hold.Registry
	finalizer *booking.Finalizer
	provider  calendar.Provider
	intake    *intake.Service
	leads     *postgres.LeadRepository // nil when Postgres is not configured
	audit     *mongoadapter.AuditLogger
	events    *rabbit.Publisher // nil when RabbitMQ is not configured
	zones     dispatch.ZoneMap
	idemp     *idempotency.Idempotency
}

func NewHandlers(
	cfg *config.Config,
	logger observability.Logger,
	engine *availability.Engine,
	holds *hold.Registry,
	finalizer *booking.Finalizer,
	provider calendar.Provider,
	intakeSvc *intake.Service,
	leads *postgres.LeadRepository,
	audit *mongoadapter.AuditLogger,
	events *rabbit.Publisher,
	idemp *idempotency.Idempotency,
) *Handlers {
	return &Handlers{
		cfg:       cfg,
		logger:    logger,
		engine:    engine,
		holds:     holds,
		finalizer: finalizer,
		provider:  provider,
		intake:    intakeSvc,
		leads:     leads,
		audit:     audit,
		events:    events,
		zones:     dispatch.ParseZones(cfg.ZoneMapJSON),
		idemp:     idemp,
	}
}

type slotView struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	TechID   string `json:"tech_id,omitempty"`
	TechName string `json:"tech_name,omitempty"`
}

func slotViews(slots []domain.Slot) []slotView {
	out := make([]slotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotView{
			Start:    s.Start.Format(time.RFC3339),
			End:      s.End.Format(time.RFC3339),
			TechID:   s.TechID,
			TechName: s.TechName,
		})
	}
	return out
}

// GetAvailability lists free slots for an explicit ISO window.
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start       string `json:"start"`
		End         string `json:"end"`
		DurationMin int    `json:"duration_min"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Mark(err, domain.ErrInvalidWindow))
		return
	}
	window, err := parseWindow(req.Start, req.End)
	if err != nil {
		h.writeError(w, err)
		return
	}
	slots, err := h.engine.SlotsForWindow(r.Context(), window, time.Duration(req.DurationMin)*time.Minute)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := map[string]interface{}{"windows": slotViews(slots)}
	if len(slots) == 0 {
		resp["status"] = "no_availability"
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListSlots lists free slots for a date expression within business hours.
func (h *Handlers) ListSlots(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DateText    string `json:"date_text"`
		StartLocal  string `json:"start_local"`
		EndLocal    string `json:"end_local"`
		DurationMin int    `json:"duration_min"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Mark(err, domain.ErrInvalidWindow))
		return
	}
	slots, err := h.engine.SlotsForDay(r.Context(), req.DateText, req.StartLocal, req.EndLocal, time.Duration(req.DurationMin)*time.Minute)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := map[string]interface{}{"slots": slotViews(slots)}
	if len(slots) == 0 {
		resp["status"] = "no_availability"
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateHold places a soft hold on a slot for the customer. A prior held hold
// for the same customer is superseded and its id reported back.
func (h *Handlers) CreateHold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Slot  struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"slot"`
		Metadata   map[string]string `json:"metadata"`
		TTLMinutes int               `json:"ttl_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Mark(err, domain.ErrInvalidSlot))
		return
	}
	if req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "missing_fields"})
		return
	}
	slot, err := parseWindow(req.Slot.Start, req.Slot.End)
	if err != nil {
		h.writeError(w, errors.Mark(err, domain.ErrInvalidSlot))
		return
	}
	created, supersededID, err := h.holds.Create(domain.CustomerKey(req.Phone), slot, req.Metadata, time.Duration(req.TTLMinutes)*time.Minute)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := map[string]interface{}{"ok": true, "hold": created}
	if supersededID != "" {
		resp["superseded_hold_id"] = supersededID
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) GetHold(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found := h.holds.Get(id)
	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"ok": false, "hold": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "hold": found})
}

func (h *Handlers) GetHoldByCustomer(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	found := h.holds.GetByCustomer(domain.CustomerKey(phone))
	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"ok": false, "hold": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "hold": found})
}

func (h *Handlers) ListActiveHolds(w http.ResponseWriter, r *http.Request) {
	active := h.holds.ListActive()
	if active == nil {
		active = []domain.Hold{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "holds": active})
}

func (h *Handlers) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	h.finishHold(w, chi.URLParam(r, "id"), h.holds.Release)
}

func (h *Handlers) ConfirmHold(w http.ResponseWriter, r *http.Request) {
	h.finishHold(w, chi.URLParam(r, "id"), h.holds.Confirm)
}

func (h *Handlers) finishHold(w http.ResponseWriter, id string, fn func(string) *domain.Hold) {
	finished := fn(id)
	if finished == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"ok": false, "hold": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "hold": finished})
}

// FinalizeBooking re-validates the window against the calendar and commits
// the event. Retries with the same Idempotency-Key replay the stored
// response instead of double-booking.
func (h *Handlers) FinalizeBooking(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	if existing, err := h.idemp.Get(r.Context(), key); err == nil && existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		Window struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"window"`
		Customer domain.Customer `json:"customer"`
		Location domain.Location `json:"location"`
		Job      domain.Job      `json:"job"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Mark(err, domain.ErrInvalidWindow))
		return
	}
	window, err := parseWindow(req.Window.Start, req.Window.End)
	if err != nil {
		h.writeError(w, err)
		return
	}

	booked, err := h.finalizer.Finalize(r.Context(), domain.BookingRequest{
		Window:   window,
		Customer: req.Customer,
		Location: req.Location,
		Job:      req.Job,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	customerKey := domain.CustomerKey(req.Customer.Phone)
	if h.audit != nil {
		h.audit.LogBooking(r.Context(), customerKey, booked)
	}
	if h.events != nil {
		evt := rabbit.BookingConfirmed{Booking: booked, CustomerName: req.Customer.FullName, CustomerPhone: req.Customer.Phone}
		if err := h.events.PublishJSON(r.Context(), rabbit.KeyBookingConfirmed, evt); err != nil {
			h.logger.WithError(err).Warn("failed to publish booking event")
		}
	}

	resp := map[string]interface{}{
		"booking_id": booked.ID,
		"ics_url":    booked.ConfirmationURL,
		"status":     booked.Status,
	}
	data, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)

	if err := h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusOK, Result: data}); err != nil {
		h.logger.WithError(err).Warn("failed to store idempotent response")
	}
}

// AppendNotes annotates a booked event with a call summary. Best effort:
// failures are logged and the caller still gets an ok.
func (h *Handlers) AppendNotes(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid_body"})
		return
	}
	if eventID != "" && req.Notes != "" {
		if err := h.provider.AppendNotes(r.Context(), eventID, req.Notes); err != nil {
			h.logger.WithError(err).WithField("event_id", eventID).Warn("failed to append notes")
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func parseWindow(start, end string) (domain.TimeWindow, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return domain.TimeWindow{}, errors.Mark(err, domain.ErrInvalidWindow)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return domain.TimeWindow{}, errors.Mark(err, domain.ErrInvalidWindow)
	}
	w := domain.TimeWindow{Start: s.UTC(), End: e.UTC()}
	if !w.Valid() {
		return domain.TimeWindow{}, domain.ErrInvalidWindow
	}
	return w, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":    "slot_conflict",
			"message":  "The requested time slot is no longer available. Please choose a different time.",
			"conflict": conflict.Busy,
		})
	case errors.Is(err, domain.ErrOutOfRange):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "date_out_of_range",
			"message": "Book within the next 45 days.",
		})
	case errors.Is(err, domain.ErrInvalidSlot):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_slot",
			"message": "Provide a valid slot {start,end} where end > start.",
		})
	case errors.Is(err, domain.ErrInvalidWindow):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_window",
			"message": "Provide a valid ISO window {start,end} where end > start (UTC with Z).",
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not_found"})
	case errors.Is(err, domain.ErrProviderUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"error": "provider_unavailable"})
	case errors.Is(err, domain.ErrBookingFailed):
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": "booking_failed"})
	default:
		h.logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal"})
	}
}
