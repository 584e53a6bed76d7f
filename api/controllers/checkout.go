package controllers

import (
	"net/http"

	"github.com/kurokira/storefront-backend/api/responses"
	"github.com/kurokira/storefront-backend/api/validators"
	"github.com/kurokira/storefront-backend/internal/checkout"
	"github.com/kurokira/storefront-backend/pkg/enums"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

type shippingPayload struct {
	Method       string `json:"method" validate:"required"`
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	City         string `json:"city"`
	Province     string `json:"province"`
	PostalCode   string `json:"postalCode"`
}

type submitPayload struct {
	Method string `json:"method" validate:"required"`
}

// CheckoutState returns the session's step machine view.
func CheckoutState(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		state, err := svc.State(ctx, sid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// CheckoutPersonal stores the first step.
func CheckoutPersonal(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload checkout.PersonalData
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		state, err := svc.SubmitPersonal(ctx, sid, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// CheckoutShipping stores the second step.
func CheckoutShipping(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload shippingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		method, err := enums.ParseShippingMethod(payload.Method)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method").
				WithDetails(map[string]string{"method": "must be delivery or pickup"}))
			return
		}

		state, err := svc.SubmitShipping(ctx, sid, checkout.ShippingData{
			Method:       method,
			Street:       payload.Street,
			StreetNumber: payload.StreetNumber,
			City:         payload.City,
			Province:     payload.Province,
			PostalCode:   payload.PostalCode,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// CheckoutBack steps backwards without discarding stored data.
func CheckoutBack(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		state, err := svc.Back(ctx, sid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// CheckoutSubmit runs the selected payment path.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload submitPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Submit(ctx, sid, enums.PaymentMethod(payload.Method))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
