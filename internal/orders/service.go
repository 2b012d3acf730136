package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarquez/storefront-backend/pkg/db/models"
	"github.com/dmarquez/storefront-backend/pkg/enums"
	pkgerrors "github.com/dmarquez/storefront-backend/pkg/errors"
	"github.com/dmarquez/storefront-backend/pkg/pagination"
)

// Page is one page of an owner's order history.
type Page struct {
	Orders     []models.Order
	NextCursor string
}

// Service exposes order reads and status management.
type Service interface {
	GetForOwner(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListForOwner(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error)
}

type service struct {
	repo OrderRepository
}

// NewService builds an order service.
func NewService(repo OrderRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// GetForOwner returns the owner's order or not-found. Other owners' orders are
// indistinguishable from missing ones.
func (s *service) GetForOwner(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.FindByIDAndOwner(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// ListForOwner returns one page of the owner's order history.
func (s *service) ListForOwner(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListByOwner(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := &Page{Orders: rows}
	fetched := len(rows)
	if limit := pagination.NormalizeLimit(params.Limit); fetched > limit {
		page.Orders = rows[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.NextCursor(last.CreatedAt, last.ID, fetched, params.Limit)
	}
	return page, nil
}

// UpdateStatus moves the order along the fulfillment lifecycle. Only forward
// transitions are allowed; delivered and cancelled are terminal.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	target, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, target),
		)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, target.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	order.Status = target
	return order, nil
}

// UpdatePaymentStatus sets the payment status. Any valid value is accepted;
// payment state does not follow the fulfillment transition rules.
func (s *service) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	target, err := enums.ParsePaymentStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if err := s.repo.UpdatePaymentStatus(ctx, orderID, target.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}

	order.PaymentStatus = target
	return order, nil
}
