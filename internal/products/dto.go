package products

import (
	"github.com/kurokira/storefront-backend/internal/pricing"
	"github.com/kurokira/storefront-backend/pkg/db/models"
	"github.com/kurokira/storefront-backend/pkg/types"
)

// ProductDTO is the catalog view served to the storefront.
type ProductDTO struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Slug            string              `json:"slug"`
	Description     string              `json:"description,omitempty"`
	Price           int                 `json:"price"`
	CompareAtPrice  *int                `json:"compareAtPrice,omitempty"`
	DiscountPercent int                 `json:"discountPercent,omitempty"`
	Images          []string            `json:"images"`
	FeaturedImage   string              `json:"featuredImage,omitempty"`
	Sizes           types.ProductSizes  `json:"sizes"`
	Colors          types.ProductColors `json:"colors"`
	Category        string              `json:"category"`
	Tags            []string            `json:"tags,omitempty"`
	IsNew           bool                `json:"isNew"`
	IsFeatured      bool                `json:"isFeatured"`
	IsOnSale        bool                `json:"isOnSale"`
	TotalStock      int                 `json:"totalStock"`
}

// ToDTO maps a catalog row to its storefront view. The compare-at badge
// percentage comes from the pricing rules.
func ToDTO(row models.Product) ProductDTO {
	dto := ProductDTO{
		ID:             row.ID.String(),
		Name:           row.Name,
		Slug:           row.Slug,
		Description:    row.Description,
		Price:          row.Price,
		CompareAtPrice: row.CompareAtPrice,
		Images:         row.Images,
		FeaturedImage:  row.FeaturedImage(),
		Sizes:          row.Sizes,
		Colors:         row.Colors,
		Category:       row.Category,
		Tags:           row.Tags,
		IsNew:          row.IsNew,
		IsFeatured:     row.IsFeatured,
		IsOnSale:       row.IsOnSale,
		TotalStock:     row.TotalStock(),
	}
	if row.CompareAtPrice != nil {
		dto.DiscountPercent = pricing.DiscountPercent(*row.CompareAtPrice, row.Price)
	}
	return dto
}
