package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository exposes persistence operations for cart lines.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Get(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	MergeUpsert(ctx context.Context, userID uuid.UUID, incoming Snapshot) error
	ReplaceAll(ctx context.Context, userID uuid.UUID, snapshot Snapshot) error
	Clear(ctx context.Context, userID uuid.UUID) error
}
