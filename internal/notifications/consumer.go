package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
)

// Consumer turns notification events into emails. Delivery failures are
// logged and the message acknowledged.
type Consumer struct {
	mailer   Mailer
	renderer *Renderer
	logger   *slog.Logger
	timeout  time.Duration
	onFailed func(eventType string)
}

func NewConsumer(mailer Mailer, renderer *Renderer, logger *slog.Logger, onFailed func(eventType string)) *Consumer {
	return &Consumer{
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
		timeout:  15 * time.Second,
		onFailed: onFailed,
	}
}

// NewRouter builds a watermill router with the consumer's handlers attached
func NewRouter(consumer *Consumer, subscriber message.Subscriber, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	consumer.Register(router, subscriber)

	return router, nil
}

func (c *Consumer) Register(router *message.Router, subscriber message.Subscriber) {
	router.AddNoPublisherHandler("notify_enrollment_confirmed", models.EventEnrollmentConfirmed, subscriber, c.HandleEnrollmentConfirmed)
	router.AddNoPublisherHandler("notify_certificate_issued", models.EventCertificateIssued, subscriber, c.HandleCertificateIssued)
}

func (c *Consumer) HandleEnrollmentConfirmed(msg *message.Message) error {
	var data models.EnrollmentConfirmedData
	event, ok := c.decode(msg, &data)
	if !ok {
		return nil
	}

	email, err := c.renderer.EnrollmentConfirmed(&data)
	if err != nil {
		c.fail(event, err)
		return nil
	}
	c.deliver(msg.Context(), event, email)
	return nil
}

func (c *Consumer) HandleCertificateIssued(msg *message.Message) error {
	var data models.CertificateIssuedData
	event, ok := c.decode(msg, &data)
	if !ok {
		return nil
	}

	email, err := c.renderer.CertificateIssued(&data)
	if err != nil {
		c.fail(event, err)
		return nil
	}
	c.deliver(msg.Context(), event, email)
	return nil
}

func (c *Consumer) decode(msg *message.Message, dest interface{}) (*events.Event, bool) {
	var event events.Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("Discarding malformed event", "message_id", msg.UUID, "error", err)
		return nil, false
	}
	if err := event.DecodeData(dest); err != nil {
		c.fail(&event, err)
		return nil, false
	}
	return &event, true
}

func (c *Consumer) deliver(ctx context.Context, event *events.Event, email *Email) {
	if email.ToAddress == "" {
		c.logger.Warn("Skipping notification without recipient", "event_id", event.ID, "event_type", event.Type)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.mailer.Send(ctx, email); err != nil {
		c.fail(event, err)
		return
	}
	c.logger.Info("Notification sent", "event_id", event.ID, "event_type", event.Type)
}

func (c *Consumer) fail(event *events.Event, err error) {
	c.logger.Error("Notification failed", "event_id", event.ID, "event_type", event.Type, "error", err)
	if c.onFailed != nil {
		c.onFailed(event.Type)
	}
}
