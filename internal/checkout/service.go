package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarquez/storefront-backend/internal/cart"
	"github.com/dmarquez/storefront-backend/internal/orders"
	"github.com/dmarquez/storefront-backend/pkg/db/models"
	"github.com/dmarquez/storefront-backend/pkg/enums"
	pkgerrors "github.com/dmarquez/storefront-backend/pkg/errors"
	"github.com/dmarquez/storefront-backend/pkg/logger"
	"github.com/dmarquez/storefront-backend/pkg/metrics"
	"github.com/dmarquez/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Input carries everything a checkout attempt needs. OwnerID nil means a
// guest attempt; Guest is ignored when OwnerID is set.
type Input struct {
	OwnerID         *uuid.UUID
	Snapshot        cart.Snapshot
	ShippingAddress types.Address
	Guest           *types.GuestInfo
}

// Service turns a cart snapshot into a persisted order.
type Service interface {
	Checkout(ctx context.Context, input Input) (*models.Order, error)
}

type service struct {
	tx       txRunner
	cartRepo cart.CartRepository
	orders   orders.OrderRepository
	products productLoader
	logg     *logger.Logger
	metrics  *metrics.HTTPMetrics
}

// NewService builds the checkout orchestrator.
func NewService(
	tx txRunner,
	cartRepo cart.CartRepository,
	orderRepo orders.OrderRepository,
	products productLoader,
	logg *logger.Logger,
	m *metrics.HTTPMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       tx,
		cartRepo: cartRepo,
		orders:   orderRepo,
		products: products,
		logg:     logg,
		metrics:  m,
	}, nil
}

// Checkout assembles and persists an order from the provided snapshot.
//
// Products missing from the catalog are skipped; a product that exists but is
// out of stock aborts the whole attempt and nothing is persisted. Line prices
// and names are copied from the catalog at this moment and never change on
// the order afterwards.
func (s *service) Checkout(ctx context.Context, input Input) (*models.Order, error) {
	order, err := s.checkout(ctx, input)
	if err != nil {
		s.metrics.IncCheckout(outcomeFor(err))
		return nil, err
	}
	s.metrics.IncCheckout("success")
	return order, nil
}

func (s *service) checkout(ctx context.Context, input Input) (*models.Order, error) {
	// a pointer at the zero UUID is no owner; the order must not store it
	if input.OwnerID != nil && *input.OwnerID == uuid.Nil {
		input.OwnerID = nil
	}

	guest, err := resolveIdentity(input)
	if err != nil {
		return nil, err
	}

	if input.Snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !input.ShippingAddress.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		items, total, err := s.assembleItems(ctx, input.Snapshot)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		order := &models.Order{
			UserID:          input.OwnerID,
			GuestInfo:       guest,
			Total:           total,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			ShippingAddress: input.ShippingAddress,
			Items:           items,
		}

		created, err = s.orders.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	// The order is committed; a failed cart clear must not undo it.
	if input.OwnerID != nil {
		if err := s.cartRepo.Clear(ctx, *input.OwnerID); err != nil {
			ctx = s.logg.WithOrderID(ctx, created.ID.String())
			s.logg.Error(ctx, "clearing cart after checkout", err)
		}
	}

	ctx = s.logg.WithOrderID(ctx, created.ID.String())
	s.logg.Info(ctx, "checkout completed")
	return created, nil
}

// assembleItems walks the snapshot in deterministic product order and freezes
// catalog names and prices into order items.
func (s *service) assembleItems(ctx context.Context, snapshot cart.Snapshot) ([]models.OrderItem, decimal.Decimal, error) {
	items := []models.OrderItem{}
	total := decimal.Zero

	for _, productID := range snapshot.ProductIDs() {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if !product.InStock {
			return nil, decimal.Zero, pkgerrors.New(
				pkgerrors.CodeOutOfStock,
				fmt.Sprintf("product %q is out of stock", product.Name),
			).WithDetails(map[string]string{"product_id": product.ID.String()})
		}

		for _, size := range snapshot.Sizes(productID) {
			qty := snapshot[productID][size]
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(qty)))
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Size:      size,
				Quantity:  qty,
				UnitPrice: product.Price,
				LineTotal: lineTotal,
			})
			total = total.Add(lineTotal)
		}
	}

	return items, total, nil
}

// resolveIdentity enforces the owner/guest exclusivity rules and returns the
// guest info that should be stored, if any.
func resolveIdentity(input Input) (*types.GuestInfo, error) {
	if input.OwnerID != nil && *input.OwnerID != uuid.Nil {
		// owner identity wins; any guest payload is discarded
		return nil, nil
	}
	if input.Guest == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest contact information is required")
	}
	if !input.Guest.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest name, email and phone are all required")
	}
	guest := *input.Guest
	return &guest, nil
}

func outcomeFor(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodeOutOfStock:
		return "out_of_stock"
	case pkgerrors.CodeValidation:
		return "rejected"
	default:
		return "error"
	}
}
