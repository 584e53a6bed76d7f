package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kurokira/storefront-backend/internal/cart"
	"github.com/kurokira/storefront-backend/internal/checkout"
	"github.com/kurokira/storefront-backend/internal/orders"
	"github.com/kurokira/storefront-backend/pkg/enums"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
	"github.com/kurokira/storefront-backend/pkg/mercadopago"
	"github.com/kurokira/storefront-backend/pkg/metrics"
)

type gateway interface {
	CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
	RedirectURL(pref *mercadopago.Preference) string
}

// Dispatcher executes the payment path selected at checkout submission.
type Dispatcher struct {
	gateway     gateway
	orders      orders.Service
	carts       cart.Service
	metrics     *metrics.CheckoutMetrics
	logg        *logger.Logger
	orderPrefix string
	now         func() time.Time
}

// NewDispatcher builds the dispatcher backed by the provided stack.
func NewDispatcher(gw gateway, ordersSvc orders.Service, carts cart.Service, m *metrics.CheckoutMetrics, logg *logger.Logger, orderPrefix string) (*Dispatcher, error) {
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		gateway:     gw,
		orders:      ordersSvc,
		carts:       carts,
		metrics:     m,
		logg:        logg,
		orderPrefix: orderPrefix,
		now:         time.Now,
	}, nil
}

// Dispatch routes the submission to the selected payment path. The method
// enum is closed; anything else is rejected outright.
func (d *Dispatcher) Dispatch(ctx context.Context, input checkout.DispatchInput) (checkout.DispatchResult, error) {
	d.metrics.IncSubmission(string(input.Method))
	start := d.now()

	var result checkout.DispatchResult
	var err error
	switch input.Method {
	case enums.PaymentMethodMercadoPago:
		result, err = d.dispatchGateway(ctx, input)
	case enums.PaymentMethodTransfer, enums.PaymentMethodCash:
		result, err = d.dispatchDirect(ctx, input)
	default:
		err = pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	d.metrics.ObserveDispatchDuration(string(input.Method), d.now().Sub(start))
	if err != nil {
		d.metrics.IncDispatch(string(input.Method), "error")
		d.logg.Error(ctx, "payment dispatch failed", err)
		return checkout.DispatchResult{}, err
	}
	d.metrics.IncDispatch(string(input.Method), "success")
	return result, nil
}

// dispatchGateway creates a checkout preference and hands back the redirect
// URL. The cart is intentionally left intact: the customer may come back.
func (d *Dispatcher) dispatchGateway(ctx context.Context, input checkout.DispatchInput) (checkout.DispatchResult, error) {
	reference := orders.NewReference(d.orderPrefix, d.now())
	pref, err := d.gateway.CreatePreference(ctx, mercadopago.PreferenceRequest{
		Items:             buildItems(input.Lines),
		Payer:             buildPayer(input.Personal, input.Shipping),
		ExternalReference: reference,
	})
	if err != nil {
		return checkout.DispatchResult{}, classifyGatewayError(err)
	}

	redirect := d.gateway.RedirectURL(pref)
	if redirect == "" {
		return checkout.DispatchResult{}, pkgerrors.New(pkgerrors.CodePayment, "gateway returned no redirect url")
	}
	return checkout.DispatchResult{
		Method:      enums.PaymentMethodMercadoPago,
		RedirectURL: redirect,
	}, nil
}

// dispatchDirect persists the order with totals frozen from the quote and
// clears the cart.
func (d *Dispatcher) dispatchDirect(ctx context.Context, input checkout.DispatchInput) (checkout.DispatchResult, error) {
	reference := orders.NewReference(d.orderPrefix, d.now())

	lines := make([]orders.LineInput, 0, len(input.Lines))
	for _, line := range input.Lines {
		lines = append(lines, orders.LineInput{
			ProductID: line.ProductID,
			Name:      line.Name,
			Size:      line.Size,
			Color:     line.Color,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Image:     line.Image,
		})
	}

	_, err := d.orders.Create(ctx, reference, orders.CreateInput{
		FirstName:      input.Personal.FirstName,
		LastName:       input.Personal.LastName,
		Email:          input.Personal.Email,
		Phone:          input.Personal.Phone,
		NationalID:     input.Personal.NationalID,
		ShippingMethod: input.Shipping.Method,
		Street:         input.Shipping.Street,
		StreetNumber:   input.Shipping.StreetNumber,
		City:           input.Shipping.City,
		Province:       input.Shipping.Province,
		PostalCode:     input.Shipping.PostalCode,
		PaymentMethod:  input.Method,
		Subtotal:       input.Quote.Subtotal,
		ShippingCost:   input.Quote.ShippingCost,
		Discount:       input.Quote.Discount,
		Total:          input.Quote.Total,
		Lines:          lines,
	})
	if err != nil {
		return checkout.DispatchResult{}, err
	}

	if err := d.carts.Clear(ctx, input.SessionID); err != nil {
		// The order is already persisted; a stale cart is not worth failing over.
		d.logg.Warn(ctx, "cart clear after confirmation failed")
	}

	return checkout.DispatchResult{
		Method:         input.Method,
		OrderReference: reference,
	}, nil
}

func buildItems(lines []cart.Line) []mercadopago.PreferenceItem {
	items := make([]mercadopago.PreferenceItem, 0, len(lines))
	for _, line := range lines {
		title := line.Name
		if line.Size != "" {
			title = fmt.Sprintf("%s - %s", line.Name, line.Size)
		}
		items = append(items, mercadopago.PreferenceItem{
			ID:         line.ProductID,
			Title:      title,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			PictureURL: line.Image,
		})
	}
	return items
}

func buildPayer(personal checkout.PersonalData, shipping checkout.ShippingData) mercadopago.PreferencePayer {
	areaCode, number := splitPhone(personal.Phone)
	return mercadopago.PreferencePayer{
		Name:    personal.FirstName,
		Surname: personal.LastName,
		Email:   personal.Email,
		Phone:   mercadopago.PayerPhone{AreaCode: areaCode, Number: number},
		Identification: mercadopago.PayerIdentification{
			Type:   "DNI",
			Number: personal.NationalID,
		},
		Address: mercadopago.PayerAddress{
			StreetName:   shipping.Street,
			StreetNumber: shipping.StreetNumber,
			ZipCode:      shipping.PostalCode,
		},
	}
}

// splitPhone strips non-digits and treats the first two digits as the area
// code.
func splitPhone(raw string) (string, string) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if len(cleaned) <= 2 {
		return "", cleaned
	}
	return cleaned[:2], cleaned[2:]
}

// classifyGatewayError maps credential problems to the configuration error so
// the storefront can show an actionable message; everything else stays a
// generic dispatch failure.
func classifyGatewayError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		if typed.Code() == pkgerrors.CodePaymentConfig {
			return typed
		}
	}
	lowered := strings.ToLower(err.Error())
	if strings.Contains(lowered, "access token") || strings.Contains(lowered, "unauthorized") {
		return pkgerrors.Wrap(pkgerrors.CodePaymentConfig, err, "gateway credentials rejected")
	}
	return pkgerrors.Wrap(pkgerrors.CodePayment, err, "gateway dispatch failed")
}
