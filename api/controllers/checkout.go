package controllers

import (
	"net/http"

	"github.com/google/uuid"

	ordersctl "github.com/dmarquez/storefront-backend/api/controllers/orders"
	"github.com/dmarquez/storefront-backend/api/middleware"
	"github.com/dmarquez/storefront-backend/api/responses"
	"github.com/dmarquez/storefront-backend/api/validators"
	cartsvc "github.com/dmarquez/storefront-backend/internal/cart"
	checkoutsvc "github.com/dmarquez/storefront-backend/internal/checkout"
	pkgerrors "github.com/dmarquez/storefront-backend/pkg/errors"
	"github.com/dmarquez/storefront-backend/pkg/logger"
	"github.com/dmarquez/storefront-backend/pkg/types"
)

// CheckoutPayload is the request body for a checkout attempt. GuestInfo is
// required only when the request carries no bearer token.
type CheckoutPayload struct {
	Cart            map[string]map[string]int `json:"cart" validate:"required"`
	ShippingAddress types.Address             `json:"shipping_address" validate:"required"`
	GuestInfo       *types.GuestInfo          `json:"guest_info,omitempty"`
}

// Checkout turns the submitted cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload CheckoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.Input{
			Snapshot:        cartsvc.ParseSnapshot(payload.Cart),
			ShippingAddress: payload.ShippingAddress,
			Guest:           payload.GuestInfo,
		}

		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			ownerID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
				return
			}
			input.OwnerID = &ownerID
		}

		order, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, ordersctl.NewOrderResponse(order))
	}
}
