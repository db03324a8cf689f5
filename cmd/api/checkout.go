package main

import (
	"errors"
	"net/http"

	"github.com/safar/coffee-shop/internal/auth"
	"github.com/safar/coffee-shop/internal/checkout"
	"github.com/safar/coffee-shop/internal/logging"
)

func handleCheckoutPreview(svc *checkout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFrom(r.Context())

		summary, err := svc.Preview(r.Context(), userID)
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondRedirect(w, http.StatusConflict, "Your cart is empty", "/cart")
		case errors.Is(err, checkout.ErrStaleCart):
			respondRedirect(w, http.StatusConflict, "Some products in your cart are no longer available", "/cart")
		case err != nil:
			logging.Err(logging.Fields{Component: "checkout", UserID: userID, Step: "preview", Status: "error"}, err)
			respondError(w, http.StatusInternalServerError, "Could not load checkout")
		default:
			respondJSON(w, http.StatusOK, summary)
		}
	}
}

func handleCheckoutConfirm(svc *checkout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFrom(r.Context())

		order, err := svc.PlaceOrder(r.Context(), userID)
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondRedirect(w, http.StatusConflict, "Your cart is empty", "/cart")
		case errors.Is(err, checkout.ErrStaleCart):
			respondRedirect(w, http.StatusConflict, "Some products in your cart are no longer available", "/cart")
		case err != nil:
			respondRedirect(w, http.StatusInternalServerError, checkout.FailureMessage, "/checkout")
		default:
			respondJSON(w, http.StatusCreated, map[string]any{
				"order_id":     order.ID,
				"order_number": order.OrderNumber,
				"total":        order.TotalAmount,
			})
		}
	}
}
