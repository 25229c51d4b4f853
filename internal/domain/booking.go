package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Slot is a candidate bookable window, optionally pinned to a technician.
type Slot struct {
	TimeWindow
	TechID   string `json:"tech_id,omitempty"`
	TechName string `json:"tech_name,omitempty"`
}

type Customer struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
}

type Location struct {
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
}

type Job struct {
	SystemType   string `json:"system_type,omitempty"`
	Symptom      string `json:"symptom,omitempty"`
	IssueSummary string `json:"issue_summary,omitempty"`
}

// BookingRequest carries everything the finalizer needs to commit a visit.
type BookingRequest struct {
	Window   TimeWindow `json:"window"`
	Customer Customer   `json:"customer"`
	Location Location   `json:"location"`
	Job      Job        `json:"job"`
}

// Booking is the durable outcome of a finalized request. Immutable once
// created; cancellation goes through the calendar, not through this record.
type Booking struct {
	ID              string     `json:"booking_id"`
	Window          TimeWindow `json:"window"`
	Status          string     `json:"status"`
	EventRef        string     `json:"event_ref"`
	ConfirmationURL string     `json:"confirmation_url,omitempty"`
}

type Lead struct {
	ID        uuid.UUID `json:"lead_id"`
	Customer  Customer  `json:"customer"`
	Location  Location  `json:"location"`
	Job       Job       `json:"job"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLead(customer Customer, location Location, job Job, reason string) Lead {
	if reason == "" {
		reason = "unspecified"
	}
	return Lead{
		ID:        uuid.New(),
		Customer:  customer,
		Location:  location,
		Job:       job,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// CustomerKey normalizes a phone number to its significant digits, keeping
// the last 11 when a country code is present, otherwise the last 10.
func CustomerKey(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	switch {
	case len(d) > 11:
		return d[len(d)-11:]
	case len(d) > 10:
		return d[len(d)-10:]
	default:
		return d
	}
}
