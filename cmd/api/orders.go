package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/safar/coffee-shop/internal/auth"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/safar/coffee-shop/internal/store"
)

type orderStore interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetUserOrder(ctx context.Context, userID string, id int64) (*models.Order, error)
	ListOrdersCursor(ctx context.Context, userID, cursor string, limit int) (*store.CursorPage, error)
	ListOrders(ctx context.Context, status string, page, pageSize int) (*store.OffsetPage, error)
	UpdateOrderStatus(ctx context.Context, id int64, next string, expectedVersion int) (*models.Order, error)
	ClaimNextPendingOrder(ctx context.Context) (*models.Order, error)
}

func respondOrderError(w http.ResponseWriter, step string, err error) {
	switch {
	case errors.Is(err, database.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, database.ErrInvalidStatusTransition):
		respondError(w, http.StatusUnprocessableEntity, "Invalid status transition")
	case errors.Is(err, database.ErrOptimisticLockFailed):
		respondError(w, http.StatusConflict, "Order was modified concurrently, reload and retry")
	default:
		respondInternal(w, "orders", step, "Could not load orders", err)
	}
}

func handleListMyOrders(orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFrom(r.Context())

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit < 1 || limit > store.MaxPageSize {
			limit = store.DefaultPageSize
		}

		cursor := r.URL.Query().Get("cursor")
		if _, err := store.DecodeCursor(cursor); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid cursor")
			return
		}

		result, err := orders.ListOrdersCursor(r.Context(), userID, cursor, limit)
		if err != nil {
			respondInternal(w, "orders", "list-mine", "Could not load orders", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleGetMyOrder(orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFrom(r.Context())

		id, ok := pathID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}

		order, err := orders.GetUserOrder(r.Context(), userID, id)
		if err != nil {
			respondOrderError(w, "get-mine", err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleAdminListOrders(orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status != "" && !models.ValidOrderStatus(status) {
			respondError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		page, pageSize := pageParams(r)
		result, err := orders.ListOrders(r.Context(), status, page, pageSize)
		if err != nil {
			respondInternal(w, "orders", "admin-list", "Could not load orders", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleAdminGetOrder(orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}

		order, err := orders.GetOrder(r.Context(), id)
		if err != nil {
			respondOrderError(w, "admin-get", err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleAdminUpdateStatus(orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}

		var req struct {
			Status  string `json:"status"`
			Version int    `json:"version"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			respondError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		order, err := orders.UpdateOrderStatus(r.Context(), id, req.Status, req.Version)
		if err != nil {
			respondOrderError(w, "admin-update-status", err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleAdminClaimOrder(orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := orders.ClaimNextPendingOrder(r.Context())
		if errors.Is(err, database.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "No pending orders")
			return
		}
		if err != nil {
			respondOrderError(w, "admin-claim", err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}
