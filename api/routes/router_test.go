package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/dmarquez/storefront-backend/internal/cart"
	checkoutsvc "github.com/dmarquez/storefront-backend/internal/checkout"
	"github.com/dmarquez/storefront-backend/internal/orders"
	products "github.com/dmarquez/storefront-backend/internal/products"
	pkgAuth "github.com/dmarquez/storefront-backend/pkg/auth"
	"github.com/dmarquez/storefront-backend/pkg/config"
	"github.com/dmarquez/storefront-backend/pkg/db/models"
	"github.com/dmarquez/storefront-backend/pkg/enums"
	"github.com/dmarquez/storefront-backend/pkg/logger"
	"github.com/dmarquez/storefront-backend/pkg/metrics"
	"github.com/dmarquez/storefront-backend/pkg/pagination"
	pkgredis "github.com/dmarquez/storefront-backend/pkg/redis"
	"github.com/dmarquez/storefront-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, userID uuid.UUID) (cart.Snapshot, error) {
	return cart.Snapshot{}, nil
}

func (stubCartService) Sync(ctx context.Context, userID uuid.UUID, incoming cart.Snapshot) (cart.Snapshot, error) {
	return incoming, nil
}

func (stubCartService) Save(ctx context.Context, userID uuid.UUID, snapshot cart.Snapshot) (cart.Snapshot, error) {
	return snapshot, nil
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Checkout(ctx context.Context, input checkoutsvc.Input) (*models.Order, error) {
	return sampleOrder(), nil
}

type stubOrderService struct{}

func (stubOrderService) GetForOwner(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	return sampleOrder(), nil
}

func (stubOrderService) ListForOwner(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.Page, error) {
	return &orders.Page{}, nil
}

func (stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error) {
	return sampleOrder(), nil
}

func (stubOrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error) {
	return sampleOrder(), nil
}

type stubProductService struct{}

func (stubProductService) Lookup(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return &models.Product{ID: id, Name: "Hoodie", Price: decimal.RequireFromString("45.00"), InStock: true}, nil
}

func (stubProductService) List(ctx context.Context, filter products.ListFilter, params pagination.Params) (*products.Page, error) {
	return &products.Page{}, nil
}

func sampleOrder() *models.Order {
	ownerID := uuid.New()
	return &models.Order{
		ID:            uuid.New(),
		UserID:        &ownerID,
		Total:         decimal.RequireFromString("45.00"),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		ShippingAddress: types.Address{
			Line1:      "1 Market St",
			City:       "Oakland",
			State:      "CA",
			PostalCode: "94607",
			Country:    "US",
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, gatherer prometheus.Gatherer) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              stubPinger{},
		Redis:           (*pkgredis.Client)(nil),
		Metrics:         metrics.NewHTTPMetrics(nil),
		Gatherer:        gatherer,
		CartService:     stubCartService{},
		CheckoutService: stubCheckoutService{},
		OrderService:    stubOrderService{},
		ProductService:  stubProductService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicPing(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public ping got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestHealthReadyReportsRedisDown(t *testing.T) {
	// the unconfigured redis client must surface as dependency-down, not a panic
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with unreachable redis got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "DEPENDENCY_ERROR") {
		t.Fatalf("expected dependency error body, got %s", resp.Body.String())
	}
}

func TestCartRequiresJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestCartReplaceRequiresIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	body := `{"cart":{}}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", resp.Code)
	}
}

func TestCheckoutAcceptsGuestsButRequiresIdempotencyKey(t *testing.T) {
	router := newTestRouter(testConfig(), nil)

	body := `{"cart":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", resp.Code)
	}
}

func TestProductsArePublic(t *testing.T) {
	router := newTestRouter(testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public product fetch got %d", resp.Code)
	}
}

func TestOrderListRequiresJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestOrderStatusUpdateSkipsShopperAuth(t *testing.T) {
	router := newTestRouter(testConfig(), nil)

	body := `{"status":"processing"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for back-office status update got %d", resp.Code)
	}
}

func TestMetricsEndpointOnlyWithGatherer(t *testing.T) {
	withGatherer := newTestRouter(testConfig(), prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	withGatherer.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}

	without := newTestRouter(testConfig(), nil)
	resp = httptest.NewRecorder()
	without.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without gatherer got %d", resp.Code)
	}
}
