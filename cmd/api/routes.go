package main

import (
	"context"
	"net/http"

	"github.com/safar/coffee-shop/internal/auth"
	"github.com/safar/coffee-shop/internal/checkout"
	"github.com/safar/coffee-shop/internal/logging"
	"github.com/safar/coffee-shop/internal/metrics"
)

type healthCheck func(ctx context.Context) error

type app struct {
	carts     cartStore
	catalog   catalogAdmin
	orders    orderStore
	favorites favoriteStore
	checkout  *checkout.Service
	metrics   *metrics.ServerMetrics
	checks    map[string]healthCheck

	jwtSecret   string
	adminAPIKey string
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	public := func(pattern, name string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, a.metrics.Instrument(name, h))
	}
	customer := func(pattern, name string, h http.HandlerFunc) {
		public(pattern, name, auth.RequireUser(a.jwtSecret, respondError, h))
	}
	admin := func(pattern, name string, h http.HandlerFunc) {
		public(pattern, name, auth.RequireAPIKey(a.adminAPIKey, respondError, h))
	}

	public("GET /health", "health", handleHealth(a.checks))
	mux.Handle("GET /metrics", metrics.Handler())

	public("GET /products", "list_products", handleListProducts(a.catalog))
	public("GET /products/{id}", "get_product", handleGetProduct(a.catalog))
	public("GET /categories", "list_categories", handleListCategories(a.catalog))

	customer("GET /cart", "get_cart", handleGetCart(a.checkout))
	customer("POST /cart/add", "cart_add", handleAddToCart(a.carts, a.catalog))
	customer("POST /cart/update", "cart_update", handleUpdateCart(a.carts, a.checkout))
	customer("POST /cart/remove", "cart_remove", handleRemoveFromCart(a.carts))
	customer("POST /cart/clear", "cart_clear", handleClearCart(a.carts))

	customer("GET /checkout", "checkout_preview", handleCheckoutPreview(a.checkout))
	customer("POST /checkout/confirm", "checkout_confirm", handleCheckoutConfirm(a.checkout))

	customer("GET /orders", "list_orders", handleListMyOrders(a.orders))
	customer("GET /orders/{id}", "get_order", handleGetMyOrder(a.orders))

	customer("GET /favorites", "list_favorites", handleListFavorites(a.favorites))
	customer("POST /favorites/toggle", "toggle_favorite", handleToggleFavorite(a.favorites))

	admin("GET /admin/orders", "admin_list_orders", handleAdminListOrders(a.orders))
	admin("GET /admin/orders/{id}", "admin_get_order", handleAdminGetOrder(a.orders))
	admin("POST /admin/orders/{id}/status", "admin_update_status", handleAdminUpdateStatus(a.orders))
	admin("POST /admin/orders/claim", "admin_claim_order", handleAdminClaimOrder(a.orders))
	admin("POST /admin/products", "admin_create_product", handleCreateProduct(a.catalog))
	admin("PUT /admin/products/{id}", "admin_update_product", handleUpdateProduct(a.catalog))
	admin("DELETE /admin/products/{id}", "admin_delete_product", handleDeleteProduct(a.catalog))
	admin("GET /admin/categories", "admin_list_categories", handleAdminListCategories(a.catalog))
	admin("POST /admin/categories/{id}/toggle", "admin_toggle_category", handleToggleCategory(a.catalog))

	return mux
}

func handleHealth(checks map[string]healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		results := map[string]string{}

		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = "unavailable"
				logging.Err(logging.Fields{Component: "health", Step: name, Status: "error"}, err)
				continue
			}
			results[name] = "ok"
		}

		respondJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": results})
	}
}
