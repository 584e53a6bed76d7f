package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurokira/storefront-backend/pkg/db/models"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
)

type productLoader interface {
	Snapshot(ctx context.Context, slug string) (*models.Product, error)
}

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	Slug     string
	Size     string
	Color    string
	Quantity int
}

// CartDTO is the cart view served to the storefront.
type CartDTO struct {
	Items     []Line `json:"items"`
	Subtotal  int    `json:"subtotal"`
	ItemCount int    `json:"itemCount"`
}

// Service exposes the cart ledger operations for one session at a time.
type Service interface {
	Get(ctx context.Context, sessionID string) (CartDTO, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (CartDTO, error)
	UpdateQuantity(ctx context.Context, sessionID string, key LineKey, quantity int) (CartDTO, error)
	RemoveItem(ctx context.Context, sessionID string, key LineKey) (CartDTO, error)
	Clear(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (*Ledger, error)
}

type service struct {
	store       Store
	products    productLoader
	maxQuantity int
}

// NewService builds a cart service. Each instance carries its own store so
// tests can isolate state.
func NewService(store Store, products productLoader, maxQuantity int) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if maxQuantity <= 0 {
		maxQuantity = 10
	}
	return &service{store: store, products: products, maxQuantity: maxQuantity}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (CartDTO, error) {
	ledger, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return CartDTO{}, err
	}
	return toDTO(ledger), nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (CartDTO, error) {
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	product, err := s.products.Snapshot(ctx, input.Slug)
	if err != nil {
		return CartDTO{}, err
	}
	size := strings.TrimSpace(input.Size)
	if size != "" && product.Sizes.StockFor(size) <= 0 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "selected size is out of stock")
	}

	ledger, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return CartDTO{}, err
	}
	ledger.upsert(Line{
		ProductID: product.ID.String(),
		Slug:      product.Slug,
		Name:      product.Name,
		Size:      size,
		Color:     strings.TrimSpace(input.Color),
		UnitPrice: product.Price,
		Quantity:  input.Quantity,
		Image:     product.FeaturedImage(),
	}, s.maxQuantity)

	if err := s.store.Save(ctx, sessionID, ledger); err != nil {
		return CartDTO{}, err
	}
	return toDTO(ledger), nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, key LineKey, quantity int) (CartDTO, error) {
	ledger, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return CartDTO{}, err
	}
	ledger.setQuantity(key, quantity, s.maxQuantity)
	if err := s.store.Save(ctx, sessionID, ledger); err != nil {
		return CartDTO{}, err
	}
	return toDTO(ledger), nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, key LineKey) (CartDTO, error) {
	ledger, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return CartDTO{}, err
	}
	ledger.remove(key)
	if err := s.store.Save(ctx, sessionID, ledger); err != nil {
		return CartDTO{}, err
	}
	return toDTO(ledger), nil
}

// Clear empties the session's cart. The checkout flow calls this only after
// a confirmed direct-payment order.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// Snapshot returns the raw ledger for checkout pricing and dispatch.
func (s *service) Snapshot(ctx context.Context, sessionID string) (*Ledger, error) {
	return s.store.Load(ctx, sessionID)
}

func toDTO(ledger *Ledger) CartDTO {
	items := ledger.Lines
	if items == nil {
		items = []Line{}
	}
	return CartDTO{
		Items:     items,
		Subtotal:  ledger.Subtotal(),
		ItemCount: ledger.ItemCount(),
	}
}
