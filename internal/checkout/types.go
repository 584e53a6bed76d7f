package checkout

import (
	"time"

	"github.com/kurokira/storefront-backend/internal/cart"
	"github.com/kurokira/storefront-backend/internal/pricing"
	"github.com/kurokira/storefront-backend/pkg/enums"
)

// PersonalData is the customer identity collected on the first step.
type PersonalData struct {
	FirstName  string `json:"firstName" validate:"required,min=2"`
	LastName   string `json:"lastName" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,min=8"`
	NationalID string `json:"nationalId" validate:"required,min=7"`
}

// ShippingData is the delivery selection collected on the second step.
// Address fields are required unless the method is pickup.
type ShippingData struct {
	Method       enums.ShippingMethod `json:"method" validate:"required"`
	Street       string               `json:"street"`
	StreetNumber string               `json:"streetNumber"`
	City         string               `json:"city"`
	Province     string               `json:"province"`
	PostalCode   string               `json:"postalCode"`
}

// Session is the per-process checkout progress for one storefront session.
// Cart contents live in redis and survive a reload; this state deliberately
// does not.
type Session struct {
	SessionID     string
	Step          enums.CheckoutStep
	Personal      *PersonalData
	Shipping      *ShippingData
	PaymentMethod enums.PaymentMethod
	Processing    bool
	UpdatedAt     time.Time
}

// StateDTO is the checkout view served to the storefront.
type StateDTO struct {
	Step          enums.CheckoutStep  `json:"step"`
	Personal      *PersonalData       `json:"personal,omitempty"`
	Shipping      *ShippingData       `json:"shipping,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod,omitempty"`
	Processing    bool                `json:"processing"`
	Cart          cart.CartDTO        `json:"cart"`
	Quote         pricing.Quote       `json:"quote"`
}
