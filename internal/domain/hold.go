package domain

import (
	"time"

	"github.com/google/uuid"
)

type HoldStatus string

const (
	HoldHeld      HoldStatus = "held"
	HoldConfirmed HoldStatus = "confirmed"
	HoldReleased  HoldStatus = "released"
	HoldExpired   HoldStatus = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s HoldStatus) Terminal() bool {
	return s != HoldHeld
}

// Hold is a temporary, advisory claim on a slot for one customer. It lives
// only in process memory; the authoritative conflict check at booking time is
// always made against the calendar provider.
type Hold struct {
	ID          string            `json:"hold_id"`
	CustomerKey string            `json:"customer_key"`
	Slot        TimeWindow        `json:"slot"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Status      HoldStatus        `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

func NewHold(customerKey string, slot TimeWindow, metadata map[string]string, ttl time.Duration) Hold {
	now := time.Now().UTC()
	return Hold{
		ID:          uuid.New().String(),
		CustomerKey: customerKey,
		Slot:        slot,
		Metadata:    metadata,
		Status:      HoldHeld,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}
