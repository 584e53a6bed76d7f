package pricing

import (
	"github.com/kurokira/storefront-backend/pkg/config"
	"github.com/kurokira/storefront-backend/pkg/enums"
)

// Quote is the priced view of a cart at checkout.
type Quote struct {
	Subtotal     int `json:"subtotal"`
	ShippingCost int `json:"shippingCost"`
	Discount     int `json:"discount"`
	Total        int `json:"total"`
	Installments int `json:"installments,omitempty"`
	PerInstall   int `json:"perInstallment,omitempty"`
}

// Engine applies the configured pricing rules to cart subtotals.
type Engine struct {
	cfg config.PricingConfig
}

func NewEngine(cfg config.PricingConfig) *Engine {
	return &Engine{cfg: cfg}
}

// ShippingCost is a step function on the subtotal: free at or above the
// threshold, flat fee below it.
func (e *Engine) ShippingCost(subtotal int) int {
	if subtotal >= e.cfg.FreeShippingThreshold {
		return 0
	}
	return e.cfg.ShippingFlatFee
}

// MethodDiscount returns the payment-method discount on the subtotal.
// Only transfer and cash carry one.
func (e *Engine) MethodDiscount(subtotal int, method enums.PaymentMethod) int {
	switch method {
	case enums.PaymentMethodTransfer:
		return PercentOff(subtotal, e.cfg.TransferDiscountPct)
	case enums.PaymentMethodCash:
		return PercentOff(subtotal, e.cfg.CashDiscountPct)
	default:
		return 0
	}
}

// Quote prices the cart for the chosen methods. Pickup waives shipping;
// with no payment method selected the discount is zero. The installment
// breakdown is only meaningful for the gateway path.
func (e *Engine) Quote(subtotal int, payment enums.PaymentMethod, shipping enums.ShippingMethod) Quote {
	shippingCost := e.ShippingCost(subtotal)
	if shipping == enums.ShippingMethodPickup {
		shippingCost = 0
	}
	discount := e.MethodDiscount(subtotal, payment)
	total := subtotal + shippingCost - discount

	q := Quote{
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		Discount:     discount,
		Total:        total,
	}
	if payment == enums.PaymentMethodMercadoPago && e.cfg.InstallmentCount > 1 {
		q.Installments = e.cfg.InstallmentCount
		q.PerInstall = Installment(total, e.cfg.InstallmentCount)
	}
	return q
}
