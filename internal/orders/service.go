package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/kurokira/storefront-backend/pkg/db"
	"github.com/kurokira/storefront-backend/pkg/db/models"
	"github.com/kurokira/storefront-backend/pkg/enums"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
	"github.com/kurokira/storefront-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// LineInput snapshots one cart line for persistence.
type LineInput struct {
	ProductID string
	Name      string
	Size      string
	Color     string
	UnitPrice int
	Quantity  int
	Image     string
}

// CreateInput captures a direct-confirmation order at submission time.
type CreateInput struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	NationalID     string
	ShippingMethod enums.ShippingMethod
	Street         string
	StreetNumber   string
	City           string
	Province       string
	PostalCode     string
	PaymentMethod  enums.PaymentMethod
	Subtotal       int
	ShippingCost   int
	Discount       int
	Total          int
	Lines          []LineInput
}

// OrderEventPayload is the outbox data published for order lifecycle events.
type OrderEventPayload struct {
	OrderID       string `json:"orderId"`
	Reference     string `json:"reference"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	PaymentMethod string `json:"paymentMethod"`
	Total         int    `json:"total"`
	ItemCount     int    `json:"itemCount"`
}

// Service persists orders and serves confirmation lookups.
type Service interface {
	Create(ctx context.Context, reference string, input CreateInput) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
}

type service struct {
	repo   *Repository
	tx     txRunner
	events eventEmitter
	logg   *logger.Logger
}

// NewService builds the orders service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, events: events, logg: logg}, nil
}

// Create persists the order with its frozen totals and queues the created
// event in the same transaction.
func (s *service) Create(ctx context.Context, reference string, input CreateInput) (*models.Order, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}

	order := &models.Order{
		ID:             uuid.New(),
		Reference:      reference,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		NationalID:     input.NationalID,
		ShippingMethod: input.ShippingMethod,
		Street:         input.Street,
		StreetNumber:   input.StreetNumber,
		City:           input.City,
		Province:       input.Province,
		PostalCode:     input.PostalCode,
		PaymentMethod:  input.PaymentMethod,
		Subtotal:       input.Subtotal,
		ShippingCost:   input.ShippingCost,
		Discount:       input.Discount,
		Total:          input.Total,
		Status:         enums.OrderStatusPending,
	}
	itemCount := 0
	for _, line := range input.Lines {
		itemCount += line.Quantity
		order.Items = append(order.Items, models.OrderLineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Size:      line.Size,
			Color:     line.Color,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.UnitPrice * line.Quantity,
			Image:     line.Image,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Insert(tx, order); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:      enums.EventOrderCreated,
			AggregateType:  enums.AggregateOrder,
			AggregateID:    order.ID,
			OrderReference: order.Reference,
			OccurredAt:     time.Now(),
			Data: OrderEventPayload{
				OrderID:       order.ID.String(),
				Reference:     order.Reference,
				Email:         order.Email,
				FirstName:     order.FirstName,
				PaymentMethod: string(order.PaymentMethod),
				Total:         order.Total,
				ItemCount:     itemCount,
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order reference already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
	}

	logCtx := s.logg.WithOrderRef(ctx, order.Reference)
	s.logg.Info(logCtx, "order persisted")
	return order, nil
}

func (s *service) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	row, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return row, nil
}
