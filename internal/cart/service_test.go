package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/dmarquez/storefront-backend/pkg/db/models"
	pkgerrors "github.com/dmarquez/storefront-backend/pkg/errors"
)

type stubCartRepo struct {
	snapshot   Snapshot
	merged     Snapshot
	replaced   Snapshot
	cleared    bool
	getErr     error
	mergeErr   error
	replaceErr error
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) Get(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.snapshot == nil {
		return Snapshot{}, nil
	}
	return s.snapshot, nil
}

func (s *stubCartRepo) MergeUpsert(ctx context.Context, userID uuid.UUID, incoming Snapshot) error {
	if s.mergeErr != nil {
		return s.mergeErr
	}
	s.merged = incoming
	return nil
}

func (s *stubCartRepo) ReplaceAll(ctx context.Context, userID uuid.UUID, snapshot Snapshot) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replaced = snapshot
	return nil
}

func (s *stubCartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	s.cleared = true
	return nil
}

type stubProductLoader struct {
	known map[uuid.UUID]*models.Product
}

func (s stubProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.known[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo CartRepository, loader productLoader) Service {
	t.Helper()
	svc, err := NewService(repo, loader)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceSyncDropsUnknownProducts(t *testing.T) {
	t.Parallel()

	knownID := uuid.New()
	unknownID := uuid.New()

	repo := &stubCartRepo{}
	loader := stubProductLoader{known: map[uuid.UUID]*models.Product{
		knownID: {ID: knownID, Name: "Hoodie"},
	}}
	svc := newTestService(t, repo, loader)

	_, err := svc.Sync(context.Background(), uuid.New(), Snapshot{
		knownID:   {"S": 2},
		unknownID: {"M": 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := repo.merged[unknownID]; ok {
		t.Fatalf("unknown product should not reach the repository")
	}
	if repo.merged[knownID]["S"] != 2 {
		t.Fatalf("known product entry lost: %+v", repo.merged)
	}
}

func TestServiceSyncRequiresUserID(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, stubProductLoader{})

	_, err := svc.Sync(context.Background(), uuid.Nil, Snapshot{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceSaveSkipsCatalogChecks(t *testing.T) {
	t.Parallel()

	// Save persists verbatim even for products the loader does not know.
	unknownID := uuid.New()
	repo := &stubCartRepo{}
	svc := newTestService(t, repo, stubProductLoader{})

	_, err := svc.Save(context.Background(), uuid.New(), Snapshot{unknownID: {"L": 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.replaced[unknownID]["L"] != 3 {
		t.Fatalf("snapshot not persisted verbatim: %+v", repo.replaced)
	}
}

func TestServiceGetEmptyCart(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, stubProductLoader{})

	snap, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.IsEmpty() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestServiceClear(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, stubProductLoader{})

	if err := svc.Clear(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.cleared {
		t.Fatal("repository Clear was not invoked")
	}
}

func TestServiceSaveConcurrentReplaceIsConflict(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{replaceErr: &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_cart_lines_owner_product_size",
	}}
	svc := newTestService(t, repo, stubProductLoader{})

	_, err := svc.Save(context.Background(), uuid.New(), Snapshot{uuid.New(): {"M": 1}})
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected a coded error, got %v", err)
	}
	if typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", typed.Code())
	}
}
