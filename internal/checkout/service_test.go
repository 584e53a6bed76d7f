package checkout

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokira/storefront-backend/internal/cart"
	"github.com/kurokira/storefront-backend/internal/pricing"
	"github.com/kurokira/storefront-backend/pkg/config"
	"github.com/kurokira/storefront-backend/pkg/enums"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

type stubCarts struct {
	ledgers map[string]*cart.Ledger
}

func (s *stubCarts) Get(_ context.Context, sessionID string) (cart.CartDTO, error) {
	ledger := s.ledger(sessionID)
	return cart.CartDTO{Items: ledger.Lines, Subtotal: ledger.Subtotal(), ItemCount: ledger.ItemCount()}, nil
}

func (s *stubCarts) AddItem(context.Context, string, cart.AddItemInput) (cart.CartDTO, error) {
	return cart.CartDTO{}, nil
}

func (s *stubCarts) UpdateQuantity(context.Context, string, cart.LineKey, int) (cart.CartDTO, error) {
	return cart.CartDTO{}, nil
}

func (s *stubCarts) RemoveItem(context.Context, string, cart.LineKey) (cart.CartDTO, error) {
	return cart.CartDTO{}, nil
}

func (s *stubCarts) Clear(_ context.Context, sessionID string) error {
	delete(s.ledgers, sessionID)
	return nil
}

func (s *stubCarts) Snapshot(_ context.Context, sessionID string) (*cart.Ledger, error) {
	return s.ledger(sessionID), nil
}

func (s *stubCarts) ledger(sessionID string) *cart.Ledger {
	if ledger, ok := s.ledgers[sessionID]; ok {
		return ledger
	}
	return &cart.Ledger{}
}

type stubDispatcher struct {
	mu      sync.Mutex
	result  DispatchResult
	err     error
	calls   int
	inputs  []DispatchInput
	block   chan struct{}
	started chan struct{}
}

func (d *stubDispatcher) Dispatch(_ context.Context, input DispatchInput) (DispatchResult, error) {
	d.mu.Lock()
	d.calls++
	d.inputs = append(d.inputs, input)
	block := d.block
	started := d.started
	d.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if d.err != nil {
		return DispatchResult{}, d.err
	}
	return d.result, nil
}

func validPersonal() PersonalData {
	return PersonalData{
		FirstName:  "Aiko",
		LastName:   "Tanaka",
		Email:      "aiko@example.com",
		Phone:      "1144556677",
		NationalID: "30111222",
	}
}

func validShipping() ShippingData {
	return ShippingData{
		Method:       enums.ShippingMethodDelivery,
		Street:       "Av. Siempreviva",
		StreetNumber: "742",
		City:         "Buenos Aires",
		Province:     "CABA",
		PostalCode:   "1414",
	}
}

func seededLedger() *cart.Ledger {
	return &cart.Ledger{Lines: []cart.Line{{
		ProductID: "p1",
		Slug:      "kuro-hoodie",
		Name:      "Kuro Hoodie",
		Size:      "M",
		Color:     "Negro",
		UnitPrice: 44900,
		Quantity:  1,
	}}}
}

func newTestCheckout(t *testing.T, dispatcher Dispatcher, ledgers map[string]*cart.Ledger) (Service, *SessionStore) {
	t.Helper()

	sessions := NewSessionStore(time.Hour, time.Hour)
	t.Cleanup(sessions.Stop)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	engine := pricing.NewEngine(config.PricingConfig{
		FreeShippingThreshold: 150000,
		ShippingFlatFee:       5000,
		TransferDiscountPct:   25,
		CashDiscountPct:       10,
		InstallmentCount:      3,
	})
	svc, err := NewService(sessions, &stubCarts{ledgers: ledgers}, engine, dispatcher, logg)
	require.NoError(t, err)
	return svc, sessions
}

func advanceToPayment(t *testing.T, svc Service, sessionID string) {
	t.Helper()

	_, err := svc.SubmitPersonal(context.Background(), sessionID, validPersonal())
	require.NoError(t, err)
	_, err = svc.SubmitShipping(context.Background(), sessionID, validShipping())
	require.NoError(t, err)
}

func TestStateEmptyCartIsNotAnError(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, nil)

	state, err := svc.State(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepCart, state.Step)
	assert.Empty(t, state.Cart.Items)
	assert.Zero(t, state.Quote.Total)
}

func TestSubmitPersonalValidationDoesNotAdvance(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, nil)
	ctx := context.Background()

	bad := validPersonal()
	bad.FirstName = "A"
	bad.Email = "not-an-email"

	_, err := svc.SubmitPersonal(ctx, "sess-1", bad)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "firstName")
	assert.Contains(t, details, "email")

	state, err := svc.State(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepCart, state.Step)
	assert.Nil(t, state.Personal)
}

func TestSubmitShippingRequiresPersonalFirst(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, nil)

	_, err := svc.SubmitShipping(context.Background(), "sess-1", validShipping())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestShippingAddressOptionalForPickup(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, nil)
	ctx := context.Background()

	_, err := svc.SubmitPersonal(ctx, "sess-1", validPersonal())
	require.NoError(t, err)

	state, err := svc.SubmitShipping(ctx, "sess-1", ShippingData{Method: enums.ShippingMethodPickup})
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepPayment, state.Step)
}

func TestShippingAddressRequiredForDelivery(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, nil)
	ctx := context.Background()

	_, err := svc.SubmitPersonal(ctx, "sess-1", validPersonal())
	require.NoError(t, err)

	_, err = svc.SubmitShipping(ctx, "sess-1", ShippingData{Method: enums.ShippingMethodDelivery})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "street")
	assert.Contains(t, details, "postalCode")
}

func TestBackNeverDiscardsData(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, nil)
	ctx := context.Background()

	advanceToPayment(t, svc, "sess-1")

	state, err := svc.Back(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepShipping, state.Step)
	require.NotNil(t, state.Personal)
	require.NotNil(t, state.Shipping)

	state, err = svc.Back(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepCart, state.Step)
	assert.Equal(t, "Aiko", state.Personal.FirstName)

	// Backing out of the cart step stays put.
	state, err = svc.Back(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepCart, state.Step)
}

func TestSubmitRejectsUnknownMethod(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, nil)

	_, err := svc.Submit(context.Background(), "sess-1", "bitcoin")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSubmitRequiresCompletedSteps(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, map[string]*cart.Ledger{"sess-1": seededLedger()})

	_, err := svc.Submit(context.Background(), "sess-1", enums.PaymentMethodCash)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	svc, _ := newTestCheckout(t, &stubDispatcher{}, nil)

	advanceToPayment(t, svc, "sess-1")

	_, err := svc.Submit(context.Background(), "sess-1", enums.PaymentMethodCash)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestSubmitPassesQuoteToDispatcher(t *testing.T) {
	dispatcher := &stubDispatcher{result: DispatchResult{Method: enums.PaymentMethodTransfer, OrderReference: "KK-TEST"}}
	svc, _ := newTestCheckout(t, dispatcher, map[string]*cart.Ledger{"sess-1": seededLedger()})

	advanceToPayment(t, svc, "sess-1")

	result, err := svc.Submit(context.Background(), "sess-1", enums.PaymentMethodTransfer)
	require.NoError(t, err)
	assert.Equal(t, "KK-TEST", result.OrderReference)

	require.Len(t, dispatcher.inputs, 1)
	quote := dispatcher.inputs[0].Quote
	assert.Equal(t, 44900, quote.Subtotal)
	assert.Equal(t, 5000, quote.ShippingCost)
	assert.Equal(t, 11225, quote.Discount)
	assert.Equal(t, 38675, quote.Total)
}

func TestSubmitDirectConfirmationResetsSession(t *testing.T) {
	dispatcher := &stubDispatcher{result: DispatchResult{Method: enums.PaymentMethodCash, OrderReference: "KK-TEST"}}
	svc, _ := newTestCheckout(t, dispatcher, map[string]*cart.Ledger{"sess-1": seededLedger()})

	advanceToPayment(t, svc, "sess-1")

	_, err := svc.Submit(context.Background(), "sess-1", enums.PaymentMethodCash)
	require.NoError(t, err)

	state, err := svc.State(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepCart, state.Step)
	assert.Nil(t, state.Personal)
}

func TestSubmitErrorKeepsPaymentStepAndResetsProcessing(t *testing.T) {
	dispatcher := &stubDispatcher{err: pkgerrors.New(pkgerrors.CodePaymentConfig, "gateway rejected credentials")}
	svc, sessions := newTestCheckout(t, dispatcher, map[string]*cart.Ledger{"sess-1": seededLedger()})

	advanceToPayment(t, svc, "sess-1")

	_, err := svc.Submit(context.Background(), "sess-1", enums.PaymentMethodMercadoPago)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodePaymentConfig, pkgerrors.As(err).Code())

	state, err := svc.State(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepPayment, state.Step)
	assert.False(t, state.Processing)
	require.NotNil(t, state.Personal)
	assert.Equal(t, "Aiko", state.Personal.FirstName)

	sess := sessions.Get("sess-1")
	assert.False(t, sess.Processing)
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	dispatcher := &stubDispatcher{
		result:  DispatchResult{Method: enums.PaymentMethodTransfer, OrderReference: "KK-TEST"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	svc, _ := newTestCheckout(t, dispatcher, map[string]*cart.Ledger{"sess-1": seededLedger()})

	advanceToPayment(t, svc, "sess-1")

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), "sess-1", enums.PaymentMethodTransfer)
		firstDone <- err
	}()

	<-dispatcher.started
	_, err := svc.Submit(context.Background(), "sess-1", enums.PaymentMethodTransfer)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	close(dispatcher.block)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, dispatcher.calls)
}
