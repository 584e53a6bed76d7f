package controllers

import (
	"net/http"

	"github.com/kurokira/storefront-backend/api/responses"
	"github.com/kurokira/storefront-backend/api/validators"
	"github.com/kurokira/storefront-backend/internal/orders"
	"github.com/kurokira/storefront-backend/pkg/enums"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

func queryFallback(r *http.Request, name, alias string) string {
	if value := validators.QueryString(r, name); value != "" {
		return value
	}
	return validators.QueryString(r, alias)
}

type confirmationDTO struct {
	Success   bool                `json:"success"`
	OrderID   string              `json:"orderId"`
	Method    enums.PaymentMethod `json:"method,omitempty"`
	Status    string              `json:"status,omitempty"`
	Total     int                 `json:"total,omitempty"`
	ItemCount int                 `json:"itemCount,omitempty"`
}

// OrderConfirmation powers the confirmation page. A status of "approved" or
// no status at all reads as success; anything else is a failed payment.
func OrderConfirmation(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// MercadoPago return redirects use its own parameter names; accept
		// them as aliases of ours.
		orderID := queryFallback(r, "order_id", "external_reference")
		if orderID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required"))
			return
		}
		status := queryFallback(r, "status", "collection_status")
		method, _ := enums.ParsePaymentMethod(queryFallback(r, "method", "payment_type"))

		dto := confirmationDTO{
			Success: status == "" || status == "approved",
			OrderID: orderID,
			Method:  method,
			Status:  status,
		}

		// Direct-confirmation orders are persisted; enrich the page with the
		// frozen totals. Gateway orders only exist on the provider side.
		if method.IsDirectConfirmation() {
			order, err := svc.GetByReference(ctx, orderID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			dto.Total = order.Total
			count := 0
			for _, item := range order.Items {
				count += item.Quantity
			}
			dto.ItemCount = count
		}

		responses.WriteSuccess(w, dto)
	}
}
