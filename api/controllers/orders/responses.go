package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarquez/storefront-backend/pkg/db/models"
	"github.com/dmarquez/storefront-backend/pkg/types"
)

// OrderResponse is the wire rendering of an order.
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          *uuid.UUID          `json:"user_id,omitempty"`
	GuestInfo       *types.GuestInfo    `json:"guest_info,omitempty"`
	Total           string              `json:"total"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	ShippingAddress types.Address       `json:"shipping_address"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

// OrderItemResponse is one frozen line of an order.
type OrderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

// NewOrderResponse renders an order with its items.
func NewOrderResponse(order *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}

	return OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		GuestInfo:       order.GuestInfo,
		Total:           order.Total.StringFixed(2),
		Status:          order.Status.String(),
		PaymentStatus:   order.PaymentStatus.String(),
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}

// OrderListResponse is one page of order history.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}
