package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmarquez/storefront-backend/api/responses"
	productsvc "github.com/dmarquez/storefront-backend/internal/products"
	"github.com/dmarquez/storefront-backend/pkg/db/models"
	pkgerrors "github.com/dmarquez/storefront-backend/pkg/errors"
	"github.com/dmarquez/storefront-backend/pkg/logger"
	"github.com/dmarquez/storefront-backend/pkg/pagination"
)

// ProductResponse is the catalog wire shape.
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       string    `json:"price"`
	InStock     bool      `json:"in_stock"`
	Sizes       []string  `json:"sizes"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductListResponse is one catalog page.
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// NewProductResponse renders a catalog entry.
func NewProductResponse(product *models.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		InStock:     product.InStock,
		Sizes:       product.Sizes,
		Tags:        product.Tags,
		CreatedAt:   product.CreatedAt,
	}
}

// ProductFetch returns one catalog entry.
func ProductFetch(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.Lookup(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewProductResponse(product))
	}
}

// ProductList returns a page of the catalog.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		query := r.URL.Query()
		params := pagination.Params{Cursor: query.Get("cursor")}
		if raw := query.Get("limit"); raw != "" {
			limit, convErr := strconv.Atoi(raw)
			if convErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, convErr, "invalid limit"))
				return
			}
			params.Limit = limit
		}

		filter := productsvc.ListFilter{
			InStockOnly: query.Get("in_stock") == "true",
			Tag:         query.Get("tag"),
		}

		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := ProductListResponse{
			Products:   make([]ProductResponse, 0, len(page.Products)),
			NextCursor: page.NextCursor,
		}
		for i := range page.Products {
			out.Products = append(out.Products, NewProductResponse(&page.Products[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
