package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safar/coffee-shop/internal/auth"
	"github.com/safar/coffee-shop/internal/cart"
	"github.com/safar/coffee-shop/internal/checkout"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/logging"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/shopspring/decimal"
)

type cartStore interface {
	GetCart(ctx context.Context, userID string) ([]models.CartItem, error)
	AddItem(ctx context.Context, userID, productID string, delta int) error
	SetItemQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type productGetter interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type cartRequest struct {
	ProductID json.RawMessage `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

func cartCount(ctx context.Context, carts cartStore, userID string) (int, error) {
	items, err := carts.GetCart(ctx, userID)
	if errors.Is(err, database.ErrUserNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cart.Count(items), nil
}

func cartFailed(w http.ResponseWriter, userID, step string, err error) {
	logging.Err(logging.Fields{Component: "cart", UserID: userID, Step: step, Status: "error"}, err)
	if errors.Is(err, database.ErrUserNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondError(w, http.StatusInternalServerError, "Could not update cart")
}

func handleGetCart(svc *checkout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFrom(r.Context())

		summary, err := svc.Cart(r.Context(), userID)
		if err != nil {
			logging.Err(logging.Fields{Component: "cart", UserID: userID, Step: "get", Status: "error"}, err)
			respondError(w, http.StatusInternalServerError, "Could not load cart")
			return
		}

		respondJSON(w, http.StatusOK, summary)
	}
}

func handleAddToCart(carts cartStore, catalog productGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, _ := auth.UserIDFrom(ctx)

		var req cartRequest
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		id, productID, ok := productIDField(req.ProductID)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		quantity, err := quantityField(req.Quantity, 1)
		if err != nil || quantity == 0 {
			respondError(w, http.StatusBadRequest, cart.ErrInvalidQuantity.Error())
			return
		}

		if _, err := catalog.GetProduct(ctx, id); err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				respondError(w, http.StatusNotFound, "Product not found")
				return
			}
			cartFailed(w, userID, "add", err)
			return
		}

		if err := carts.AddItem(ctx, userID, productID, quantity); err != nil {
			cartFailed(w, userID, "add", err)
			return
		}

		count, err := cartCount(ctx, carts, userID)
		if err != nil {
			cartFailed(w, userID, "add", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "count": count})
	}
}

func handleUpdateCart(carts cartStore, svc *checkout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, _ := auth.UserIDFrom(ctx)

		var req cartRequest
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		productID := cartEntryID(req.ProductID)
		if productID == "" {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		quantity, err := quantityField(req.Quantity, -1)
		if err != nil || quantity < 0 {
			respondError(w, http.StatusBadRequest, cart.ErrInvalidQuantity.Error())
			return
		}

		if err := carts.SetItemQuantity(ctx, userID, productID, quantity); err != nil {
			cartFailed(w, userID, "update", err)
			return
		}

		summary, err := svc.Cart(ctx, userID)
		if err != nil {
			cartFailed(w, userID, "update", err)
			return
		}

		itemTotal := decimal.Zero
		for _, line := range summary.Lines {
			if line.ProductID == productID {
				itemTotal = line.LineTotal
			}
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"ok":         true,
			"cart_count": summary.Count,
			"item_total": itemTotal,
			"cart_total": summary.Total,
			"removed":    quantity == 0,
		})
	}
}

func handleRemoveFromCart(carts cartStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, _ := auth.UserIDFrom(ctx)

		var req cartRequest
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		productID := cartEntryID(req.ProductID)
		if productID == "" {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		if err := carts.RemoveItem(ctx, userID, productID); err != nil {
			cartFailed(w, userID, "remove", err)
			return
		}

		count, err := cartCount(ctx, carts, userID)
		if err != nil {
			cartFailed(w, userID, "remove", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "count": count})
	}
}

func handleClearCart(carts cartStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFrom(r.Context())

		if err := carts.Clear(r.Context(), userID); err != nil {
			cartFailed(w, userID, "clear", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "count": 0})
	}
}
