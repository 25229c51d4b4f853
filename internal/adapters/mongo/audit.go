// Package mongo keeps the audit trail: one document per hold or booking
// transition, for operational forensics. Writes are best effort and never
// fail the surrounding flow.
package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/observability"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID          uuid.UUID `bson:"_id"`
	Action      string    `bson:"action"`
	CustomerKey string    `bson:"customer_key,omitempty"`
	Timestamp   time.Time `bson:"timestamp"`
	Data        bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action, customerKey string, data map[string]interface{}) {
	log := AuditLog{
		ID:          uuid.New(),
		Action:      action,
		CustomerKey: customerKey,
		Timestamp:   time.Now().UTC(),
		Data:        bson.M(data),
	}
	if _, err := a.coll.InsertOne(ctx, log); err != nil {
		a.logger.WithError(err).Error("failed to insert audit log")
	}
}

func (a *AuditLogger) LogHold(ctx context.Context, action string, hold domain.Hold) {
	a.LogEvent(ctx, action, hold.CustomerKey, map[string]interface{}{
		"hold_id":    hold.ID,
		"slot_start": hold.Slot.Start.Format(time.RFC3339),
		"slot_end":   hold.Slot.End.Format(time.RFC3339),
		"status":     string(hold.Status),
		"expires_at": hold.ExpiresAt.Format(time.RFC3339),
	})
}

func (a *AuditLogger) LogBooking(ctx context.Context, customerKey string, booking domain.Booking) {
	a.LogEvent(ctx, "booking.confirmed", customerKey, map[string]interface{}{
		"booking_id":   booking.ID,
		"event_ref":    booking.EventRef,
		"window_start": booking.Window.Start.Format(time.RFC3339),
		"window_end":   booking.Window.End.Format(time.RFC3339),
	})
}
