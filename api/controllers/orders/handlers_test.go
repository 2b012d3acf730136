package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquez/storefront-backend/api/middleware"
	ordersvc "github.com/dmarquez/storefront-backend/internal/orders"
	"github.com/dmarquez/storefront-backend/pkg/db/models"
	"github.com/dmarquez/storefront-backend/pkg/enums"
	pkgerrors "github.com/dmarquez/storefront-backend/pkg/errors"
	"github.com/dmarquez/storefront-backend/pkg/logger"
	"github.com/dmarquez/storefront-backend/pkg/pagination"
)

type stubOrderService struct {
	order     *models.Order
	page      *ordersvc.Page
	statusIn  string
	payIn     string
	err       error
}

func (s *stubOrderService) GetForOwner(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) ListForOwner(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersvc.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error) {
	s.statusIn = raw
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error) {
	s.payIn = raw
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func withOrderID(req *http.Request, orderID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleOrder(owner *uuid.UUID) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		UserID:        owner,
		Total:         decimal.RequireFromString("99.90"),
		Status:        enums.OrderStatusProcessing,
		PaymentStatus: enums.PaymentStatusPaid,
		Items: []models.OrderItem{
			{
				ProductID: uuid.New(),
				Name:      "Hoodie",
				Size:      "M",
				Quantity:  3,
				UnitPrice: decimal.RequireFromString("33.30"),
				LineTotal: decimal.RequireFromString("99.90"),
			},
		},
	}
}

func TestOrderStatusUpdateSuccess(t *testing.T) {
	ownerID := uuid.New()
	svc := &stubOrderService{order: sampleOrder(&ownerID)}
	handler := OrderStatusUpdate(svc, testLogger())

	body, _ := json.Marshal(map[string]string{"status": "shipped"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/x/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withOrderID(req, svc.order.ID.String())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.statusIn != "shipped" {
		t.Fatalf("status not forwarded: %q", svc.statusIn)
	}
}

func TestOrderStatusUpdateInvalidTransition(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot transition order from delivered to processing")}
	handler := OrderStatusUpdate(svc, testLogger())

	body, _ := json.Marshal(map[string]string{"status": "processing"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/x/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withOrderID(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestOrderStatusUpdateMalformedID(t *testing.T) {
	handler := OrderStatusUpdate(&stubOrderService{}, testLogger())

	body, _ := json.Marshal(map[string]string{"status": "processing"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/nope/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withOrderID(req, "nope")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestOrderPaymentStatusUpdateSuccess(t *testing.T) {
	ownerID := uuid.New()
	svc := &stubOrderService{order: sampleOrder(&ownerID)}
	handler := OrderPaymentStatusUpdate(svc, testLogger())

	body, _ := json.Marshal(map[string]string{"payment_status": "paid"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/x/payment-status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withOrderID(req, svc.order.ID.String())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.payIn != "paid" {
		t.Fatalf("payment status not forwarded: %q", svc.payIn)
	}
}

func TestOrderFetchRendersMoneyAsFixedStrings(t *testing.T) {
	ownerID := uuid.New()
	svc := &stubOrderService{order: sampleOrder(&ownerID)}
	handler := OrderFetch(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/x", nil)
	req = withOrderID(req, svc.order.ID.String())
	req = req.WithContext(middleware.WithUserID(req.Context(), ownerID.String()))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data OrderResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Total != "99.90" {
		t.Fatalf("unexpected total rendering: %q", envelope.Data.Total)
	}
	if envelope.Data.Items[0].UnitPrice != "33.30" {
		t.Fatalf("unexpected unit price rendering: %q", envelope.Data.Items[0].UnitPrice)
	}
}

func TestOrderFetchRequiresAuth(t *testing.T) {
	handler := OrderFetch(&stubOrderService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/x", nil)
	req = withOrderID(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestOrderListForwardsPagination(t *testing.T) {
	ownerID := uuid.New()
	svc := &stubOrderService{page: &ordersvc.Page{
		Orders:     []models.Order{*sampleOrder(&ownerID)},
		NextCursor: "abc",
	}}
	handler := OrderList(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), ownerID.String()))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data OrderListResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 || envelope.Data.NextCursor != "abc" {
		t.Fatalf("unexpected page: %+v", envelope.Data)
	}
}
