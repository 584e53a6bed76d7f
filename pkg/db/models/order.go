package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kurokira/storefront-backend/pkg/enums"
)

// Order is the persisted result of a direct-confirmation checkout. Totals are
// frozen at submission time from the pricing quote and never re-derived.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Reference      string               `gorm:"column:reference;not null;uniqueIndex"`
	FirstName      string               `gorm:"column:first_name;not null"`
	LastName       string               `gorm:"column:last_name;not null"`
	Email          string               `gorm:"column:email;not null"`
	Phone          string               `gorm:"column:phone;not null"`
	NationalID     string               `gorm:"column:national_id;not null"`
	ShippingMethod enums.ShippingMethod `gorm:"column:shipping_method;type:text;not null"`
	Street         string               `gorm:"column:street"`
	StreetNumber   string               `gorm:"column:street_number"`
	City           string               `gorm:"column:city"`
	Province       string               `gorm:"column:province"`
	PostalCode     string               `gorm:"column:postal_code"`
	PaymentMethod  enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null"`
	Subtotal       int                  `gorm:"column:subtotal;not null"`
	ShippingCost   int                  `gorm:"column:shipping_cost;not null"`
	Discount       int                  `gorm:"column:discount;not null;default:0"`
	Total          int                  `gorm:"column:total;not null"`
	Status         enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	Items          []OrderLineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
