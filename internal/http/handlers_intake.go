package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/belmontfield/dispatch/internal/adapters/rabbit"
	"github.com/belmontfield/dispatch/internal/dispatch"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/intake"
)

// CheckServiceArea resolves a (possibly spoken-form) ZIP to its service zone.
func (h *Handlers) CheckServiceArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Zip string `json:"zip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "reason": "invalid_zip"})
		return
	}
	normalized := dispatch.NormalizeZip(req.Zip)
	if normalized == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": false, "reason": "invalid_zip"})
		return
	}
	zoneID, zone, ok := h.zones.FindZone(normalized)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":     false,
			"reason": "out_of_area",
			"zip":    normalized,
			"city":   dispatch.CityForZip(normalized),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":              true,
		"zone_id":         zoneID,
		"name":            zone.Name,
		"zip":             normalized,
		"city":            dispatch.CityForZip(normalized),
		"visit_fee":       zone.VisitFee,
		"after_hours_fee": zone.AfterHoursFee,
		"sla_hours":       zone.SLAHours,
	})
}

func (h *Handlers) EstimatePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SystemType string `json:"system_type"`
		Symptom    string `json:"symptom"`
		Zip        string `json:"zip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid_body"})
		return
	}
	writeJSON(w, http.StatusOK, dispatch.EstimatePrice(h.zones, req.Zip))
}

func (h *Handlers) PlanJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symptom string `json:"symptom"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid_body"})
		return
	}
	writeJSON(w, http.StatusOK, dispatch.PlanJob(req.Symptom))
}

func (h *Handlers) Triage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid_body"})
		return
	}
	res := dispatch.Triage(req.Text)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"emergency": res.Emergency,
		"priority":  res.Priority,
	})
}

// CreateLead records a caller who left the booking path for follow-up.
func (h *Handlers) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer domain.Customer `json:"customer"`
		Location domain.Location `json:"location"`
		Job      domain.Job      `json:"job"`
		Reason   string          `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid_body"})
		return
	}
	lead := domain.NewLead(req.Customer, req.Location, req.Job, req.Reason)
	if h.leads != nil {
		if err := h.leads.Create(r.Context(), lead); err != nil {
			h.writeError(w, err)
			return
		}
	} else {
		h.logger.WithField("lead_id", lead.ID).Warn("lead store not configured, lead not persisted")
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), "lead.created", domain.CustomerKey(req.Customer.Phone), map[string]interface{}{
			"lead_id": lead.ID.String(),
			"reason":  lead.Reason,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "lead_id": lead.ID})
}

// CreateIntakeLink stores a partial booking and mints a tokenized intake URL.
func (h *Handlers) CreateIntakeLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string             `json:"phone"`
		Window   *domain.TimeWindow `json:"window"`
		Job      domain.Job         `json:"job"`
		Location *domain.Location   `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid_body"})
		return
	}
	token, link, err := h.intake.CreateLink(r.Context(), intake.Record{
		Phone:    req.Phone,
		Window:   req.Window,
		Job:      req.Job,
		Location: req.Location,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "token": token, "url": link})
}

func (h *Handlers) GetIntakeData(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	rec, err := h.intake.GetByToken(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"data": map[string]interface{}{
			"window":   rec.Window,
			"job":      rec.Job,
			"location": rec.Location,
		},
	})
}

// SubmitIntakeForm completes a tokenized intake and finalizes the booking.
func (h *Handlers) SubmitIntakeForm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token        string `json:"token"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		AddressLine1 string `json:"address_line1"`
		City         string `json:"city"`
		Zip          string `json:"zip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "missing_token"})
		return
	}
	rec, err := h.intake.GetByToken(r.Context(), req.Token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "intake_not_found"})
		return
	}
	h.completeIntake(w, r, rec, req.Name, req.Email, req.AddressLine1, req.City, req.Zip, rec.Phone, func() {
		if err := h.intake.ClearByToken(r.Context(), req.Token); err != nil {
			h.logger.WithError(err).Warn("failed to clear intake token")
		}
	})
}

// SendIntakeSMS stores a partial intake for the phone and texts the customer.
func (h *Handlers) SendIntakeSMS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To       string             `json:"to"`
		Link     string             `json:"link"`
		Name     string             `json:"name"`
		Email    string             `json:"email"`
		Address  string             `json:"address"`
		Window   *domain.TimeWindow `json:"window"`
		Job      domain.Job         `json:"job"`
		Location *domain.Location   `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "missing_to"})
		return
	}
	sid, simulated, err := h.intake.SendSMS(r.Context(), req.To, req.Link, intake.Record{
		Name:     req.Name,
		Email:    req.Email,
		Address:  req.Address,
		Window:   req.Window,
		Job:      req.Job,
		Location: req.Location,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := map[string]interface{}{"ok": true}
	if simulated {
		resp["simulated"] = true
	} else {
		resp["sid"] = sid
	}
	writeJSON(w, http.StatusOK, resp)
}

// FinalizeIntakeBooking completes an SMS intake by phone and books it.
func (h *Handlers) FinalizeIntakeBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone        string `json:"phone"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		AddressLine1 string `json:"address_line1"`
		City         string `json:"city"`
		Zip          string `json:"zip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "missing_phone"})
		return
	}
	rec, err := h.intake.GetByPhone(r.Context(), req.Phone)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "intake_not_found"})
		return
	}
	h.completeIntake(w, r, rec, req.Name, req.Email, req.AddressLine1, req.City, req.Zip, req.Phone, func() {
		if err := h.intake.ClearByPhone(r.Context(), req.Phone); err != nil {
			h.logger.WithError(err).Warn("failed to clear phone intake")
		}
	})
}

// completeIntake assembles the booking request from the stored record plus
// the submitted fields, finalizes it, and clears the intake on success.
func (h *Handlers) completeIntake(w http.ResponseWriter, r *http.Request, rec *intake.Record, name, email, address, city, zip, phone string, clear func()) {
	if rec.Window == nil {
		h.writeError(w, domain.ErrInvalidWindow)
		return
	}
	if name == "" {
		name = rec.Name
	}
	if email == "" {
		email = rec.Email
	}
	location := domain.Location{AddressLine1: address, City: city, Zip: zip}
	if rec.Location != nil {
		location = *rec.Location
	}

	booked, err := h.finalizer.Finalize(r.Context(), domain.BookingRequest{
		Window:   *rec.Window,
		Customer: domain.Customer{FullName: name, Email: email, Phone: domain.CustomerKey(phone)},
		Location: location,
		Job:      rec.Job,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	clear()

	if h.audit != nil {
		h.audit.LogBooking(r.Context(), domain.CustomerKey(phone), booked)
	}
	if h.events != nil {
		evt := rabbit.BookingConfirmed{Booking: booked, CustomerName: name, CustomerPhone: phone}
		if err := h.events.PublishJSON(r.Context(), rabbit.KeyBookingConfirmed, evt); err != nil {
			h.logger.WithError(err).Warn("failed to publish booking event")
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"booking_id": booked.ID,
		"ics_url":    booked.ConfirmationURL,
		"status":     booked.Status,
	})
}

// Context reports the service's notion of now in the business timezone, so
// the calling agent can anchor relative date expressions.
func (h *Handlers) Context(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(h.cfg.Location)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"now_iso":    now.UTC().Format(time.RFC3339),
		"local_date": now.Format("2006-01-02"),
		"local_time": now.Format("15:04"),
		"timezone":   h.cfg.Timezone,
	})
}
