// notify-worker consumes booking confirmation events and texts the customer
// a confirmation with the calendar link. It is optional: the API publishes
// events fire-and-forget and does not depend on this worker running.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/belmontfield/dispatch/internal/adapters/rabbit"
	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/notify"
	"github.com/belmontfield/dispatch/internal/observability"
)

const queue = "dispatch.notify.q"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger()

	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required for the notify worker")
	}
	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	consumer, err := rabbit.NewConsumer(conn, queue, rabbit.KeyBookingConfirmed)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	sms := notify.NewSMSSender(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down notify worker")
		cancel()
	}()

	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	logger.WithField("queue", queue).Info("notify worker started")
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			if err := handle(ctx, sms, cfg, logger, d.Body); err != nil {
				logger.WithError(err).Warn("failed to handle booking event")
			}
			if err := d.Ack(false); err != nil {
				logger.WithError(err).Warn("failed to ack delivery")
			}
		}
	}
}

func handle(ctx context.Context, sms *notify.SMSSender, cfg *config.Config, logger observability.Logger, body []byte) error {
	var evt rabbit.BookingConfirmed
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}
	if evt.CustomerPhone == "" {
		logger.WithField("booking_id", evt.Booking.ID).Warn("booking event has no phone, skipping")
		return nil
	}

	start := evt.Booking.Window.Start.In(cfg.Location)
	msg := fmt.Sprintf("You're booked for %s. Add it to your calendar: %s",
		start.Format("Mon Jan 2 at 3:04 PM"), evt.Booking.ConfirmationURL)

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	sid, simulated, err := sms.Send(sendCtx, evt.CustomerPhone, msg)
	if err != nil {
		return err
	}
	logger.WithField("booking_id", evt.Booking.ID).
		WithField("sid", sid).
		WithField("simulated", simulated).
		Info("confirmation sent")
	return nil
}
