package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmarquez/storefront-backend/pkg/db/models"
)

// Repository exposes persistence operations for cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Get loads the owner's cart lines folded into a snapshot.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	var lines []models.CartLine
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return SnapshotFromLines(lines), nil
}

// MergeUpsert folds the incoming snapshot into the stored cart with a single
// upsert statement. Quantities only ever grow: on conflict a line keeps the
// larger of its stored and incoming quantity, so replaying the same payload
// is a no-op and a concurrent merge can never shrink a committed line or
// trip the unique index.
func (r *Repository) MergeUpsert(ctx context.Context, userID uuid.UUID, incoming Snapshot) error {
	if incoming.IsEmpty() {
		return nil
	}

	lines := make([]models.CartLine, 0, len(incoming))
	for _, productID := range incoming.ProductIDs() {
		for _, size := range incoming.Sizes(productID) {
			lines = append(lines, models.CartLine{
				UserID:    userID,
				ProductID: productID,
				Size:      size,
				Quantity:  incoming[productID][size],
			})
		}
	}

	// CASE rather than GREATEST; sqlite has no GREATEST.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "size"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("CASE WHEN cart_lines.quantity >= excluded.quantity THEN cart_lines.quantity ELSE excluded.quantity END"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&lines).Error
}

// ReplaceAll atomically replaces the owner's cart with the snapshot.
func (r *Repository) ReplaceAll(ctx context.Context, userID uuid.UUID, snapshot Snapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if snapshot.IsEmpty() {
			return nil
		}

		lines := make([]models.CartLine, 0, len(snapshot))
		for _, productID := range snapshot.ProductIDs() {
			for _, size := range snapshot.Sizes(productID) {
				lines = append(lines, models.CartLine{
					UserID:    userID,
					ProductID: productID,
					Size:      size,
					Quantity:  snapshot[productID][size],
				})
			}
		}
		return tx.Create(&lines).Error
	})
}

// Clear removes every cart line belonging to the owner.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
}
