package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kurokira/storefront-backend/pkg/types"
)

// Product represents one catalog listing. Images, sizes and colors live in
// jsonb columns because the storefront always reads them together with the row.
type Product struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name           string              `gorm:"column:name;not null"`
	Slug           string              `gorm:"column:slug;not null;uniqueIndex"`
	Description    string              `gorm:"column:description"`
	Price          int                 `gorm:"column:price;not null"`
	CompareAtPrice *int                `gorm:"column:compare_at_price"`
	Images         []string            `gorm:"column:images;type:jsonb;serializer:json"`
	Sizes          types.ProductSizes  `gorm:"column:sizes;type:jsonb;serializer:json"`
	Colors         types.ProductColors `gorm:"column:colors;type:jsonb;serializer:json"`
	Category       string              `gorm:"column:category;not null"`
	Tags           []string            `gorm:"column:tags;type:jsonb;serializer:json"`
	IsNew          bool                `gorm:"column:is_new;not null;default:false"`
	IsFeatured     bool                `gorm:"column:is_featured;not null;default:false"`
	IsOnSale       bool                `gorm:"column:is_on_sale;not null;default:false"`
	IsActive       bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// FeaturedImage returns the first image URL, or empty when none is set.
func (p Product) FeaturedImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// TotalStock aggregates the per-size stock counts.
func (p Product) TotalStock() int {
	return p.Sizes.TotalStock()
}
