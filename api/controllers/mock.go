package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yulishop/storefront/api/middleware"
	"github.com/yulishop/storefront/api/responses"
	"github.com/yulishop/storefront/api/validators"
	"github.com/yulishop/storefront/internal/catalog"
	"github.com/yulishop/storefront/internal/mockbackend"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/pagination"
	"github.com/yulishop/storefront/pkg/types"
)

// OrderIntake is implemented by mockbackend.OrderBook.
type OrderIntake interface {
	Place(ctx context.Context, userID string, order types.PendingOrder) (types.PlacedOrder, error)
	Page(params pagination.Params) (pagination.Page[mockbackend.ReceivedOrder], error)
}

// CatalogSource is implemented by mockbackend.Catalog.
type CatalogSource interface {
	Perfume(slug string) (catalog.Perfume, error)
	List(limit int) []catalog.Perfume
}

// MockPlaceOrder accepts a pending order and answers {"id": ...} like the
// real order backend.
func MockPlaceOrder(book OrderIntake, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var order types.PendingOrder
		if err := validators.DecodeJSON(r, &order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		placed, err := book.Place(r.Context(), middleware.UserIDFromContext(r.Context()), order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, placed)
	}
}

// MockListOrders is the admin view of received orders, newest first.
func MockListOrders(book OrderIntake, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := book.Page(pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func MockListPerfumes(source CatalogSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 24, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, source.List(limit))
	}
}

func MockGetPerfume(source CatalogSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		perfume, err := source.Perfume(chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, perfume)
	}
}
