package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarquez/storefront-backend/pkg/db"
	"github.com/dmarquez/storefront-backend/pkg/db/models"
	pkgerrors "github.com/dmarquez/storefront-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart state operations for an authenticated owner.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	Sync(ctx context.Context, userID uuid.UUID, incoming Snapshot) (Snapshot, error)
	Save(ctx context.Context, userID uuid.UUID, snapshot Snapshot) (Snapshot, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     CartRepository
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// Get returns the owner's current cart. Owners without rows get an empty
// snapshot, not an error.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	snap, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return snap, nil
}

// Sync merges a client-side cart into the stored one. Products missing from
// the catalog are dropped from the incoming payload; surviving entries merge
// by keeping the larger quantity per product and size. The merged cart is
// returned.
func (s *service) Sync(ctx context.Context, userID uuid.UUID, incoming Snapshot) (Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	known := Snapshot{}
	for _, productID := range incoming.ProductIDs() {
		_, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		known[productID] = incoming[productID]
	}

	if err := s.repo.MergeUpsert(ctx, userID, known); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart")
	}

	snap, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return snap, nil
}

// Save overwrites the stored cart with the provided snapshot. No catalog
// filtering happens here; the payload is persisted as given.
func (s *service) Save(ctx context.Context, userID uuid.UUID, snapshot Snapshot) (Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if err := s.repo.ReplaceAll(ctx, userID, snapshot); err != nil {
		// a second writer replaced the cart between our delete and insert
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "cart was modified concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}

	snap, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return snap, nil
}

// Clear empties the owner's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
