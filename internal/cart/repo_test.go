package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarquez/storefront-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	cartLines := `
CREATE TABLE IF NOT EXISTS cart_lines (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  size TEXT NOT NULL DEFAULT 'default',
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id, size)
);`
	require.NoError(t, db.Exec(cartLines).Error)
	return db
}

func TestRepositoryMergeUpsertKeepsLargerQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	productID := uuid.New()

	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{
		productID: {"M": 3},
	}))

	// smaller incoming quantity must not shrink the stored line
	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{
		productID: {"M": 1},
	}))

	snap, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, snap[productID]["M"])

	// larger incoming quantity wins
	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{
		productID: {"M": 7},
	}))

	snap, err = repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7, snap[productID]["M"])
}

func TestRepositoryMergeUpsertIdempotent(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	incoming := Snapshot{
		uuid.New(): {"S": 2, "L": 4},
		uuid.New(): {DefaultSize: 1},
	}

	require.NoError(t, repo.MergeUpsert(ctx, userID, incoming))
	first, err := repo.Get(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, repo.MergeUpsert(ctx, userID, incoming))
	second, err := repo.Get(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRepositoryMergeUpsertMixedBatchInOneStatement(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	keepStored := uuid.New()
	takeIncoming := uuid.New()
	fresh := uuid.New()

	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{
		keepStored:   {"M": 9},
		takeIncoming: {"L": 2},
	}))

	// one call carrying inserts alongside both conflict outcomes
	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{
		keepStored:   {"M": 4},
		takeIncoming: {"L": 5},
		fresh:        {DefaultSize: 1},
	}))

	snap, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 9, snap[keepStored]["M"])
	assert.Equal(t, 5, snap[takeIncoming]["L"])
	assert.Equal(t, 1, snap[fresh][DefaultSize])
}

func TestRepositoryMergeUpsertMergesRowsInsertedElsewhere(t *testing.T) {
	// a line landed by another writer must merge, not trip the unique index
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	productID := uuid.New()
	require.NoError(t, db.Create(&models.CartLine{
		UserID:    userID,
		ProductID: productID,
		Size:      "M",
		Quantity:  4,
	}).Error)

	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{productID: {"M": 2}}))

	snap, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, snap[productID]["M"])
}

func TestRepositoryMergeUpsertAddsNewSizes(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	productID := uuid.New()

	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{productID: {"S": 2}}))
	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{productID: {"L": 5}}))

	snap, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap[productID]["S"])
	assert.Equal(t, 5, snap[productID]["L"])
}

func TestRepositoryReplaceAllOverwrites(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	oldProduct := uuid.New()
	newProduct := uuid.New()

	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{oldProduct: {"M": 9}}))
	require.NoError(t, repo.ReplaceAll(ctx, userID, Snapshot{newProduct: {"S": 1}}))

	snap, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.NotContains(t, snap, oldProduct)
	assert.Equal(t, 1, snap[newProduct]["S"])
}

func TestRepositoryReplaceAllEmptyClearsCart(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, repo.MergeUpsert(ctx, userID, Snapshot{uuid.New(): {"M": 2}}))
	require.NoError(t, repo.ReplaceAll(ctx, userID, Snapshot{}))

	snap, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestRepositoryClearScopedToOwner(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()
	productID := uuid.New()

	require.NoError(t, repo.MergeUpsert(ctx, owner, Snapshot{productID: {"M": 2}}))
	require.NoError(t, repo.MergeUpsert(ctx, other, Snapshot{productID: {"M": 4}}))

	require.NoError(t, repo.Clear(ctx, owner))

	ownerSnap, err := repo.Get(ctx, owner)
	require.NoError(t, err)
	assert.True(t, ownerSnap.IsEmpty())

	otherSnap, err := repo.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 4, otherSnap[productID]["M"])
}
