package cart

import (
	cartsvc "github.com/dmarquez/storefront-backend/internal/cart"
)

// CartPayload is the wire shape clients send for sync and save: product id to
// size to quantity.
type CartPayload struct {
	Cart map[string]map[string]int `json:"cart" validate:"required"`
}

// Snapshot parses the payload, dropping malformed keys and non-positive
// quantities.
func (p CartPayload) Snapshot() cartsvc.Snapshot {
	return cartsvc.ParseSnapshot(p.Cart)
}

// CartResponse mirrors the payload shape on the way out.
type CartResponse struct {
	Cart map[string]map[string]int `json:"cart"`
}

// NewCartResponse renders a snapshot for clients.
func NewCartResponse(snapshot cartsvc.Snapshot) CartResponse {
	return CartResponse{Cart: snapshot.Wire()}
}
