package payments

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokira/storefront-backend/internal/cart"
	"github.com/kurokira/storefront-backend/internal/checkout"
	"github.com/kurokira/storefront-backend/internal/orders"
	"github.com/kurokira/storefront-backend/internal/pricing"
	"github.com/kurokira/storefront-backend/pkg/db/models"
	"github.com/kurokira/storefront-backend/pkg/enums"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
	"github.com/kurokira/storefront-backend/pkg/mercadopago"
)

type stubGateway struct {
	req  *mercadopago.PreferenceRequest
	pref *mercadopago.Preference
	err  error
}

func (g *stubGateway) CreatePreference(_ context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	g.req = &req
	if g.err != nil {
		return nil, g.err
	}
	return g.pref, nil
}

func (g *stubGateway) RedirectURL(pref *mercadopago.Preference) string {
	if pref == nil {
		return ""
	}
	return pref.InitPoint
}

type stubOrders struct {
	created   *orders.CreateInput
	reference string
	err       error
}

func (s *stubOrders) Create(_ context.Context, reference string, input orders.CreateInput) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.reference = reference
	s.created = &input
	return &models.Order{Reference: reference}, nil
}

func (s *stubOrders) GetByReference(context.Context, string) (*models.Order, error) {
	return nil, errors.New("not implemented")
}

type stubCarts struct {
	cleared  []string
	clearErr error
}

func (s *stubCarts) Get(context.Context, string) (cart.CartDTO, error) {
	return cart.CartDTO{}, nil
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
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, sessionID)
	return nil
}

func (s *stubCarts) Snapshot(context.Context, string) (*cart.Ledger, error) {
	return &cart.Ledger{}, nil
}

func dispatchInput(method enums.PaymentMethod) checkout.DispatchInput {
	return checkout.DispatchInput{
		SessionID: "sess-1",
		Method:    method,
		Personal: checkout.PersonalData{
			FirstName:  "Aiko",
			LastName:   "Tanaka",
			Email:      "aiko@example.com",
			Phone:      "+54 11 4455-6677",
			NationalID: "30111222",
		},
		Shipping: checkout.ShippingData{
			Method:       enums.ShippingMethodDelivery,
			Street:       "Av. Siempreviva",
			StreetNumber: "742",
			City:         "Buenos Aires",
			Province:     "CABA",
			PostalCode:   "1414",
		},
		Lines: []cart.Line{{
			ProductID: "p1",
			Slug:      "kuro-hoodie",
			Name:      "Kuro Hoodie",
			Size:      "M",
			Color:     "Negro",
			UnitPrice: 44900,
			Quantity:  1,
			Image:     "https://cdn.example.com/kuro-hoodie.jpg",
		}},
		Quote: pricing.Quote{Subtotal: 44900, ShippingCost: 5000, Discount: 11225, Total: 38675},
	}
}

func newTestDispatcher(t *testing.T, gw *stubGateway, ordersSvc *stubOrders, carts *stubCarts) *Dispatcher {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	d, err := NewDispatcher(gw, ordersSvc, carts, nil, logg, "KK")
	require.NoError(t, err)
	return d
}

func TestDispatchGatewayBuildsPreference(t *testing.T) {
	gw := &stubGateway{pref: &mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp.example.com/init"}}
	carts := &stubCarts{}
	d := newTestDispatcher(t, gw, &stubOrders{}, carts)

	result, err := d.Dispatch(context.Background(), dispatchInput(enums.PaymentMethodMercadoPago))
	require.NoError(t, err)
	assert.Equal(t, "https://mp.example.com/init", result.RedirectURL)
	assert.Empty(t, result.OrderReference)

	require.NotNil(t, gw.req)
	require.Len(t, gw.req.Items, 1)
	assert.Equal(t, "p1", gw.req.Items[0].ID)
	assert.Equal(t, "Kuro Hoodie - M", gw.req.Items[0].Title)
	assert.Equal(t, 44900, gw.req.Items[0].UnitPrice)
	assert.Equal(t, "https://cdn.example.com/kuro-hoodie.jpg", gw.req.Items[0].PictureURL)

	payer := gw.req.Payer
	assert.Equal(t, "Aiko", payer.Name)
	assert.Equal(t, "Tanaka", payer.Surname)
	assert.Equal(t, "54", payer.Phone.AreaCode)
	assert.Equal(t, "1144556677", payer.Phone.Number)
	assert.Equal(t, "30111222", payer.Identification.Number)
	assert.Equal(t, "1414", payer.Address.ZipCode)

	assert.True(t, strings.HasPrefix(gw.req.ExternalReference, "KK-"))
	assert.Empty(t, carts.cleared, "gateway path must not clear the cart")
}

func TestDispatchGatewayCredentialErrorIsConfigError(t *testing.T) {
	gw := &stubGateway{err: errors.New(`gateway rejected: {"error": "unauthorized access token"}`)}
	d := newTestDispatcher(t, gw, &stubOrders{}, &stubCarts{})

	_, err := d.Dispatch(context.Background(), dispatchInput(enums.PaymentMethodMercadoPago))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePaymentConfig, typed.Code())
}

func TestDispatchGatewayGenericErrorIsPaymentError(t *testing.T) {
	gw := &stubGateway{err: errors.New("connection reset by peer")}
	d := newTestDispatcher(t, gw, &stubOrders{}, &stubCarts{})

	_, err := d.Dispatch(context.Background(), dispatchInput(enums.PaymentMethodMercadoPago))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodePayment, pkgerrors.As(err).Code())
}

func TestDispatchTransferPersistsOrderAndClearsCart(t *testing.T) {
	ordersSvc := &stubOrders{}
	carts := &stubCarts{}
	d := newTestDispatcher(t, &stubGateway{}, ordersSvc, carts)

	result, err := d.Dispatch(context.Background(), dispatchInput(enums.PaymentMethodTransfer))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.OrderReference, "KK-"))
	assert.Empty(t, result.RedirectURL)

	require.NotNil(t, ordersSvc.created)
	assert.Equal(t, enums.PaymentMethodTransfer, ordersSvc.created.PaymentMethod)
	assert.Equal(t, 38675, ordersSvc.created.Total)
	assert.Equal(t, 11225, ordersSvc.created.Discount)
	require.Len(t, ordersSvc.created.Lines, 1)
	assert.Equal(t, "Kuro Hoodie", ordersSvc.created.Lines[0].Name)

	assert.Equal(t, []string{"sess-1"}, carts.cleared)
}

func TestDispatchCashKeepsOrderWhenCartClearFails(t *testing.T) {
	ordersSvc := &stubOrders{}
	d := newTestDispatcher(t, &stubGateway{}, ordersSvc, &stubCarts{clearErr: errors.New("redis down")})

	result, err := d.Dispatch(context.Background(), dispatchInput(enums.PaymentMethodCash))
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodCash, result.Method)
	assert.NotEmpty(t, result.OrderReference)
}

func TestDispatchUnknownMethodFails(t *testing.T) {
	d := newTestDispatcher(t, &stubGateway{}, &stubOrders{}, &stubCarts{})

	_, err := d.Dispatch(context.Background(), dispatchInput("voucher"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSplitPhone(t *testing.T) {
	area, number := splitPhone("+54 (11) 4455-6677")
	assert.Equal(t, "54", area)
	assert.Equal(t, "1144556677", number)

	area, number = splitPhone("42")
	assert.Empty(t, area)
	assert.Equal(t, "42", number)
}
