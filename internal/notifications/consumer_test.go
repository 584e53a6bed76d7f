package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokira/storefront-backend/internal/orders"
	"github.com/kurokira/storefront-backend/pkg/logger"
	"github.com/kurokira/storefront-backend/pkg/outbox"
)

type stubMailer struct {
	sent []string
	err  error
}

func (m *stubMailer) Send(_ context.Context, _, toEmail, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

type stubIdempotency struct {
	seen    map[string]bool
	deleted []string
	err     error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{seen: map[string]bool{}}
}

func (s *stubIdempotency) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubIdempotency) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.seen, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func (s *stubIdempotency) IdempotencyKey(scope, id string) string {
	return "kk:idempotency:" + scope + ":" + id
}

func newTestConsumer(t *testing.T, mail *stubMailer, idem *stubIdempotency) *Consumer {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	consumer, err := NewConsumer(mail, &pubsub.Subscriber{}, idem, logg)
	require.NoError(t, err)
	return consumer
}

func envelopeBytes(t *testing.T, eventID string, payload orders.OrderEventPayload) []byte {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:        1,
		EventID:        eventID,
		OccurredAt:     time.Now(),
		OrderReference: payload.Reference,
		Data:           data,
	})
	require.NoError(t, err)
	return raw
}

func fixturePayload() orders.OrderEventPayload {
	return orders.OrderEventPayload{
		OrderID:       "11111111-1111-1111-1111-111111111111",
		Reference:     "KK-TEST",
		Email:         "aiko@example.com",
		FirstName:     "Aiko",
		PaymentMethod: "transfer",
		Total:         38675,
		ItemCount:     1,
	}
}

func TestHandleSendsConfirmationOnce(t *testing.T) {
	mail := &stubMailer{}
	idem := newStubIdempotency()
	consumer := newTestConsumer(t, mail, idem)
	ctx := context.Background()

	data := envelopeBytes(t, "ev-1", fixturePayload())

	assert.True(t, consumer.handle(ctx, data, "order_created", "m1"))
	assert.True(t, consumer.handle(ctx, data, "order_created", "m2"))
	assert.Equal(t, []string{"aiko@example.com"}, mail.sent)
}

func TestHandleSkipsOtherEvents(t *testing.T) {
	mail := &stubMailer{}
	consumer := newTestConsumer(t, mail, newStubIdempotency())

	assert.True(t, consumer.handle(context.Background(), nil, "order_cancelled", "m1"))
	assert.Empty(t, mail.sent)
}

func TestHandleAcksMalformedEnvelope(t *testing.T) {
	mail := &stubMailer{}
	consumer := newTestConsumer(t, mail, newStubIdempotency())

	assert.True(t, consumer.handle(context.Background(), []byte("{not json"), "order_created", "m1"))
	assert.Empty(t, mail.sent)
}

func TestHandleNacksWhenMailFails(t *testing.T) {
	mail := &stubMailer{err: errors.New("sendgrid down")}
	idem := newStubIdempotency()
	consumer := newTestConsumer(t, mail, idem)

	data := envelopeBytes(t, "ev-1", fixturePayload())

	assert.False(t, consumer.handle(context.Background(), data, "order_created", "m1"))
	// The idempotency mark is released so a redelivery can retry.
	assert.NotEmpty(t, idem.deleted)

	mail.err = nil
	assert.True(t, consumer.handle(context.Background(), data, "order_created", "m2"))
	assert.Equal(t, []string{"aiko@example.com"}, mail.sent)
}

func TestHandleNacksWhenIdempotencyStoreFails(t *testing.T) {
	idem := newStubIdempotency()
	idem.err = errors.New("redis down")
	consumer := newTestConsumer(t, &stubMailer{}, idem)

	data := envelopeBytes(t, "ev-1", fixturePayload())
	assert.False(t, consumer.handle(context.Background(), data, "order_created", "m1"))
}

func TestBuildConfirmationEmail(t *testing.T) {
	subject, body := buildConfirmationEmail(fixturePayload())

	assert.Contains(t, subject, "KK-TEST")
	assert.Contains(t, body, "Aiko")
	assert.Contains(t, body, "38675")
	assert.Contains(t, body, "transfer")
}
