package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/kurokira/storefront-backend/internal/orders"
	"github.com/kurokira/storefront-backend/pkg/enums"
	"github.com/kurokira/storefront-backend/pkg/logger"
	"github.com/kurokira/storefront-backend/pkg/outbox"
)

const (
	orderEmailConsumer   = "order-emails"
	idempotencyRetainTTL = 72 * time.Hour
)

type mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error
}

type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Consumer watches order events and sends the confirmation email.
type Consumer struct {
	mail         mailer
	subscription *pubsub.Subscriber
	idempotency  idempotencyStore
	logg         *logger.Logger
}

// NewConsumer builds the order email consumer.
func NewConsumer(mail mailer, subscription *pubsub.Subscriber, idempotency idempotencyStore, logg *logger.Logger) (*Consumer, error) {
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if idempotency == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		mail:         mail,
		subscription: subscription,
		idempotency:  idempotency,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.handle(ctx, msg.Data, msg.Attributes["event_type"], msg.ID) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// handle reports whether the message should be acked. Malformed messages ack
// so they never loop; transient failures nack for redelivery.
func (c *Consumer) handle(ctx context.Context, data []byte, eventType, messageID string) bool {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventOrderCreated) {
		c.logg.Info(logCtx, "skipping event")
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	if envelope.EventID == "" {
		c.logg.Info(logCtx, "envelope has no event id")
		return true
	}

	key := c.idempotency.IdempotencyKey(orderEmailConsumer, envelope.EventID)
	fresh, err := c.idempotency.SetNX(ctx, key, time.Now().Unix(), idempotencyRetainTTL)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if !fresh {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	var payload orders.OrderEventPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Del(ctx, key)
		return true
	}

	logCtx = c.logg.WithOrderRef(logCtx, payload.Reference)
	subject, body := buildConfirmationEmail(payload)
	if err := c.mail.Send(ctx, payload.FirstName, payload.Email, subject, body); err != nil {
		c.logg.Error(logCtx, "confirmation email failed", err)
		_ = c.idempotency.Del(ctx, key)
		return false
	}

	c.logg.Info(logCtx, "confirmation email sent")
	return true
}

func buildConfirmationEmail(payload orders.OrderEventPayload) (string, string) {
	subject := fmt.Sprintf("Your KURO/KIRA order %s", payload.Reference)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received your order <strong>%s</strong> (%d item(s), total %d) paid via %s.</p><p>We will contact you as soon as it ships.</p>",
		payload.FirstName,
		payload.Reference,
		payload.ItemCount,
		payload.Total,
		payload.PaymentMethod,
	)
	return subject, body
}
