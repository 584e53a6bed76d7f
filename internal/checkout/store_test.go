package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kurokira/storefront-backend/pkg/enums"
)

func TestSessionStoreCreatesFreshSession(t *testing.T) {
	store := NewSessionStore(time.Hour, time.Hour)
	defer store.Stop()

	sess := store.Get("sess-1")
	assert.Equal(t, enums.CheckoutStepCart, sess.Step)
	assert.Nil(t, sess.Personal)
}

func TestSessionStoreExpiresStaleSessions(t *testing.T) {
	store := NewSessionStore(10*time.Millisecond, time.Hour)
	defer store.Stop()

	sess := store.Get("sess-1")
	sess.Step = enums.CheckoutStepPayment
	store.Put(sess)

	time.Sleep(20 * time.Millisecond)
	store.expire()

	fresh := store.Get("sess-1")
	assert.Equal(t, enums.CheckoutStepCart, fresh.Step)
}

func TestProcessingGuardIsExclusive(t *testing.T) {
	store := NewSessionStore(time.Hour, time.Hour)
	defer store.Stop()

	store.Put(store.Get("sess-1"))

	assert.True(t, store.TryBeginProcessing("sess-1"))
	assert.False(t, store.TryBeginProcessing("sess-1"))

	store.EndProcessing("sess-1")
	assert.True(t, store.TryBeginProcessing("sess-1"))
}

func TestSetPaymentMethodKeepsProcessingFlag(t *testing.T) {
	store := NewSessionStore(time.Hour, time.Hour)
	defer store.Stop()

	store.Put(store.Get("sess-1"))
	assert.True(t, store.TryBeginProcessing("sess-1"))

	store.SetPaymentMethod("sess-1", enums.PaymentMethodTransfer)

	sess := store.Get("sess-1")
	assert.True(t, sess.Processing)
	assert.Equal(t, enums.PaymentMethodTransfer, sess.PaymentMethod)
}
