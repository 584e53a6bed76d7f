package checkout

import (
	"context"
	"fmt"

	"github.com/kurokira/storefront-backend/internal/cart"
	"github.com/kurokira/storefront-backend/internal/pricing"
	"github.com/kurokira/storefront-backend/pkg/enums"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

// DispatchInput carries everything a payment path needs from the session.
type DispatchInput struct {
	SessionID string
	Method    enums.PaymentMethod
	Personal  PersonalData
	Shipping  ShippingData
	Lines     []cart.Line
	Quote     pricing.Quote
}

// DispatchResult is the outcome of a successful dispatch. Exactly one of
// RedirectURL (gateway path) or OrderReference (direct confirmation) is set.
type DispatchResult struct {
	Method         enums.PaymentMethod `json:"method"`
	RedirectURL    string              `json:"redirectUrl,omitempty"`
	OrderReference string              `json:"orderReference,omitempty"`
}

// Dispatcher executes the selected payment path.
type Dispatcher interface {
	Dispatch(ctx context.Context, input DispatchInput) (DispatchResult, error)
}

// Service drives the checkout step machine.
type Service interface {
	State(ctx context.Context, sessionID string) (StateDTO, error)
	SubmitPersonal(ctx context.Context, sessionID string, data PersonalData) (StateDTO, error)
	SubmitShipping(ctx context.Context, sessionID string, data ShippingData) (StateDTO, error)
	Back(ctx context.Context, sessionID string) (StateDTO, error)
	Submit(ctx context.Context, sessionID string, method enums.PaymentMethod) (DispatchResult, error)
}

type service struct {
	sessions   *SessionStore
	carts      cart.Service
	engine     *pricing.Engine
	dispatcher Dispatcher
	logg       *logger.Logger
}

// NewService builds the checkout service backed by the provided stack.
func NewService(sessions *SessionStore, carts cart.Service, engine *pricing.Engine, dispatcher Dispatcher, logg *logger.Logger) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("payment dispatcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		sessions:   sessions,
		carts:      carts,
		engine:     engine,
		dispatcher: dispatcher,
		logg:       logg,
	}, nil
}

// State returns the current checkout view. An empty cart yields the empty
// state on the cart step rather than an error.
func (s *service) State(ctx context.Context, sessionID string) (StateDTO, error) {
	sess := s.sessions.Get(sessionID)
	return s.view(ctx, sess)
}

// SubmitPersonal validates and stores the first step. Validation failures
// never mutate stored data and never advance the step.
func (s *service) SubmitPersonal(ctx context.Context, sessionID string, data PersonalData) (StateDTO, error) {
	if err := validatePersonal(data); err != nil {
		return StateDTO{}, err
	}
	sess := s.sessions.Get(sessionID)
	sess.Personal = &data
	if sess.Step.Before(enums.CheckoutStepShipping) {
		sess.Step = enums.CheckoutStepShipping
	}
	s.sessions.Put(sess)
	return s.view(ctx, sess)
}

// SubmitShipping validates and stores the second step. Requires the personal
// step to have been completed first.
func (s *service) SubmitShipping(ctx context.Context, sessionID string, data ShippingData) (StateDTO, error) {
	sess := s.sessions.Get(sessionID)
	if sess.Personal == nil {
		return StateDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "personal data must be completed first")
	}
	if err := validateShipping(data); err != nil {
		return StateDTO{}, err
	}
	sess.Shipping = &data
	if sess.Step.Before(enums.CheckoutStepPayment) {
		sess.Step = enums.CheckoutStepPayment
	}
	s.sessions.Put(sess)
	return s.view(ctx, sess)
}

// Back moves one step towards the cart. Stored data is never discarded.
func (s *service) Back(ctx context.Context, sessionID string) (StateDTO, error) {
	sess := s.sessions.Get(sessionID)
	switch sess.Step {
	case enums.CheckoutStepPayment:
		sess.Step = enums.CheckoutStepShipping
	case enums.CheckoutStepShipping:
		sess.Step = enums.CheckoutStepCart
	}
	s.sessions.Put(sess)
	return s.view(ctx, sess)
}

// Submit runs the selected payment path. While the dispatch is in flight the
// session reports processing and concurrent submits are rejected; the flag
// always resets regardless of outcome.
func (s *service) Submit(ctx context.Context, sessionID string, method enums.PaymentMethod) (DispatchResult, error) {
	if !method.IsValid() {
		return DispatchResult{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]string{"method": "must be one of mercadopago, transfer, cash"})
	}

	sess := s.sessions.Get(sessionID)
	if sess.Step != enums.CheckoutStepPayment || sess.Personal == nil || sess.Shipping == nil {
		return DispatchResult{}, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout steps are incomplete")
	}

	ledger, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return DispatchResult{}, err
	}
	if ledger.IsEmpty() {
		return DispatchResult{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	if !s.sessions.TryBeginProcessing(sessionID) {
		return DispatchResult{}, pkgerrors.New(pkgerrors.CodeConflict, "a payment is already in progress")
	}
	defer s.sessions.EndProcessing(sessionID)

	s.sessions.SetPaymentMethod(sessionID, method)

	quote := s.engine.Quote(ledger.Subtotal(), method, sess.Shipping.Method)
	result, err := s.dispatcher.Dispatch(ctx, DispatchInput{
		SessionID: sessionID,
		Method:    method,
		Personal:  *sess.Personal,
		Shipping:  *sess.Shipping,
		Lines:     ledger.Lines,
		Quote:     quote,
	})
	if err != nil {
		// Session stays on the payment step with its data intact for retry.
		return DispatchResult{}, err
	}

	if method.IsDirectConfirmation() {
		s.sessions.Delete(sessionID)
		logCtx := s.logg.WithOrderRef(ctx, result.OrderReference)
		s.logg.Info(logCtx, "checkout confirmed")
	}
	return result, nil
}

func (s *service) view(ctx context.Context, sess Session) (StateDTO, error) {
	cartDTO, err := s.carts.Get(ctx, sess.SessionID)
	if err != nil {
		return StateDTO{}, err
	}
	shipping := enums.ShippingMethodDelivery
	if sess.Shipping != nil {
		shipping = sess.Shipping.Method
	}
	return StateDTO{
		Step:          sess.Step,
		Personal:      sess.Personal,
		Shipping:      sess.Shipping,
		PaymentMethod: sess.PaymentMethod,
		Processing:    sess.Processing,
		Cart:          cartDTO,
		Quote:         s.engine.Quote(cartDTO.Subtotal, sess.PaymentMethod, shipping),
	}, nil
}
