package rabbit

import "github.com/belmontfield/dispatch/internal/domain"

// KeyBookingConfirmed is the routing key for confirmed bookings. Hold
// lifecycle events are published under the registry's event names
// ("hold.created", "hold.released", "hold.confirmed", "hold.expired").
const KeyBookingConfirmed = "booking.confirmed"

// BookingConfirmed is the payload published under KeyBookingConfirmed.
// It carries enough customer detail for downstream notification without
// requiring consumers to look the booking up.
type BookingConfirmed struct {
	Booking       domain.Booking `json:"booking"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
}
