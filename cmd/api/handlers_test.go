package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/safar/coffee-shop/internal/auth"
	"github.com/safar/coffee-shop/internal/cart"
	"github.com/safar/coffee-shop/internal/checkout"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/metrics"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/safar/coffee-shop/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handler-secret"
	testAPIKey = "admin-key"
	testUser   = "64b7f0c2a1b2c3d4e5f60718"
)

type memCatalog struct {
	mu         sync.Mutex
	products   map[int64]*models.Product
	categories []models.Category
	err        error
}

func (c *memCatalog) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return nil, database.ErrProductNotFound
}

func (c *memCatalog) ListProductsPaged(ctx context.Context, filter store.ProductFilter, page, pageSize int) (*store.OffsetPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	products := []models.Product{}
	for _, p := range c.products {
		if filter.Category == "" || p.Category == filter.Category {
			products = append(products, *p)
		}
	}
	return &store.OffsetPage{Items: products, Total: int64(len(products)), Page: page, PageSize: pageSize, TotalPages: 1}, nil
}

func (c *memCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	active := []models.Category{}
	for _, category := range c.categories {
		if category.IsActive {
			active = append(active, category)
		}
	}
	return active, nil
}

func (c *memCatalog) ListAllCategories(ctx context.Context) ([]models.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Category{}, c.categories...), nil
}

func (c *memCatalog) ToggleCategory(ctx context.Context, id int64) (*models.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.categories {
		if c.categories[i].ID == id {
			c.categories[i].IsActive = !c.categories[i].IsActive
			category := c.categories[i]
			return &category, nil
		}
	}
	return nil, database.ErrCategoryNotFound
}

func (c *memCatalog) UpdateProduct(ctx context.Context, id int64, p models.Product) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[id]; !ok {
		return nil, database.ErrProductNotFound
	}
	p.ID = id
	c.products[id] = &p
	return &p, nil
}

func (c *memCatalog) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.ID = int64(len(c.products) + 1)
	c.products[p.ID] = &p
	return &p, nil
}

func (c *memCatalog) DeleteProduct(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[id]; !ok {
		return database.ErrProductNotFound
	}
	delete(c.products, id)
	return nil
}

type memOrders struct {
	mu      sync.Mutex
	orders  []*models.Order
	err     error
	listErr error
}

func (o *memOrders) CreateOrder(ctx context.Context, req store.CreateOrderRequest) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	if len(req.Items) == 0 {
		return nil, database.ErrEmptyOrder
	}
	order := &models.Order{
		ID:          int64(len(o.orders) + 1),
		UserID:      req.UserID,
		OrderNumber: "ORD-0000000000AA",
		Status:      models.OrderStatusPending,
		TotalAmount: store.OrderTotal(req.Items),
		Version:     1,
		CreatedAt:   time.Now(),
	}
	o.orders = append(o.orders, order)
	return order, nil
}

func (o *memOrders) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, order := range o.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, database.ErrOrderNotFound
}

func (o *memOrders) GetUserOrder(ctx context.Context, userID string, id int64) (*models.Order, error) {
	order, err := o.GetOrder(ctx, id)
	if err != nil || order.UserID != userID {
		return nil, database.ErrOrderNotFound
	}
	return order, nil
}

func (o *memOrders) ListOrdersCursor(ctx context.Context, userID, cursor string, limit int) (*store.CursorPage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.listErr != nil {
		return nil, o.listErr
	}
	orders := []models.Order{}
	for _, order := range o.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return &store.CursorPage{Items: orders}, nil
}

func (o *memOrders) ListOrders(ctx context.Context, status string, page, pageSize int) (*store.OffsetPage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.listErr != nil {
		return nil, o.listErr
	}
	return &store.OffsetPage{Items: o.orders, Total: int64(len(o.orders)), Page: page, PageSize: pageSize}, nil
}

func (o *memOrders) UpdateOrderStatus(ctx context.Context, id int64, next string, expectedVersion int) (*models.Order, error) {
	order, err := o.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if expectedVersion > 0 && expectedVersion != order.Version {
		return nil, database.ErrOptimisticLockFailed
	}
	if !models.CanTransition(order.Status, next) {
		return nil, database.ErrInvalidStatusTransition
	}
	order.Status = next
	order.Version++
	return order, nil
}

func (o *memOrders) ClaimNextPendingOrder(ctx context.Context) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, order := range o.orders {
		if order.Status == models.OrderStatusPending {
			order.Status = models.OrderStatusProcessing
			return order, nil
		}
	}
	return nil, database.ErrOrderNotFound
}

type memFavorites struct {
	favs map[string][]string
}

func (f *memFavorites) Favorites(ctx context.Context, userID string) ([]string, error) {
	return f.favs[userID], nil
}

func (f *memFavorites) ToggleFavorite(ctx context.Context, userID, productID string) (bool, error) {
	for i, id := range f.favs[userID] {
		if id == productID {
			f.favs[userID] = append(f.favs[userID][:i], f.favs[userID][i+1:]...)
			return false, nil
		}
	}
	f.favs[userID] = append(f.favs[userID], productID)
	return true, nil
}

type testServer struct {
	handler http.Handler
	carts   *cart.MemoryStore
	catalog *memCatalog
	orders  *memOrders
	svc     *checkout.Service
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	carts := cart.NewMemoryStore()
	carts.Register(testUser)
	catalog := &memCatalog{
		products: map[int64]*models.Product{
			1: {ID: 1, Name: "Espresso", Category: "drinks", Price: decimal.RequireFromString("3.50")},
			2: {ID: 2, Name: "Huila 250g", Category: "beans", Price: decimal.RequireFromString("16.00")},
		},
		categories: []models.Category{
			{ID: 1, Name: "beans", IsActive: true},
			{ID: 2, Name: "seasonal", IsActive: false},
		},
	}
	orders := &memOrders{}
	favorites := &memFavorites{favs: map[string][]string{}}

	svc := checkout.NewService(checkout.Deps{
		Carts:   carts,
		Catalog: catalog,
		Orders:  orders,
	}, checkout.Options{})

	a := &app{
		carts:     carts,
		catalog:   catalog,
		orders:    orders,
		favorites: favorites,
		checkout:  svc,
		metrics:   metrics.NewServerMetrics(prometheus.NewRegistry()),
		checks: map[string]healthCheck{
			"postgres": func(ctx context.Context) error { return nil },
		},
		jwtSecret:   testSecret,
		adminAPIKey: testAPIKey,
	}

	token, err := auth.IssueToken(testSecret, testUser, time.Hour)
	require.NoError(t, err)

	return &testServer{handler: a.routes(), carts: carts, catalog: catalog, orders: orders, svc: svc, token: token}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestCustomerRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.token = "garbage"

	rec, _ := s.do(t, http.MethodGet, "/cart", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/checkout/confirm", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/cart/add", `{"product_id": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(1), body["count"])

	rec, body = s.do(t, http.MethodPost, "/cart/add", `{"product_id": "1", "quantity": "2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["count"])

	rec, body = s.do(t, http.MethodPost, "/cart/add", `{"product_id": 2, "quantity": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), body["count"])

	rec, body = s.do(t, http.MethodPost, "/cart/update", `{"product_id": "1", "quantity": 4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), body["cart_count"])
	assert.Equal(t, "14", body["item_total"])
	assert.Equal(t, "30", body["cart_total"])
	assert.Equal(t, false, body["removed"])

	rec, body = s.do(t, http.MethodPost, "/cart/update", `{"product_id": "2", "quantity": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["removed"])
	assert.Equal(t, float64(4), body["cart_count"])

	rec, body = s.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "14", body["total"])
	assert.Len(t, body["items"], 1)

	rec, body = s.do(t, http.MethodPost, "/cart/remove", `{"product_id": "1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])
}

func TestCartUsesCanonicalProductIDs(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/cart/add", `{"product_id": "02", "quantity": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["count"])

	rec, body = s.do(t, http.MethodPost, "/cart/update", `{"product_id": "002", "quantity": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), body["cart_count"])
	assert.Equal(t, "80", body["item_total"])

	items, err := s.carts.GetCart(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: "2", Quantity: 5}}, items)

	rec, body = s.do(t, http.MethodPost, "/cart/remove", `{"product_id": " 02 "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])

	require.NoError(t, s.carts.AddItem(context.Background(), testUser, "legacy-sku", 1))
	rec, body = s.do(t, http.MethodPost, "/cart/remove", `{"product_id": "legacy-sku"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])
}

func TestCartRejectsInvalidInput(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.carts.AddItem(context.Background(), testUser, "1", 2))

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"negative update", "/cart/update", `{"product_id": "1", "quantity": -1}`, http.StatusBadRequest},
		{"fractional update", "/cart/update", `{"product_id": "1", "quantity": "1.5"}`, http.StatusBadRequest},
		{"text update", "/cart/update", `{"product_id": "1", "quantity": "lots"}`, http.StatusBadRequest},
		{"missing quantity", "/cart/update", `{"product_id": "1"}`, http.StatusBadRequest},
		{"zero add", "/cart/add", `{"product_id": 1, "quantity": 0}`, http.StatusBadRequest},
		{"bad product id", "/cart/add", `{"product_id": "abc"}`, http.StatusBadRequest},
		{"unknown product", "/cart/add", `{"product_id": 99}`, http.StatusNotFound},
		{"malformed body", "/cart/add", `{"product_id":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	items, err := s.carts.GetCart(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: "1", Quantity: 2}}, items)
}

func TestCheckoutConfirm(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/checkout/confirm", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/cart", body["redirect"])

	rec, body = s.do(t, http.MethodGet, "/checkout", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/cart", body["redirect"])

	require.NoError(t, s.carts.AddItem(context.Background(), testUser, "1", 2))

	rec, body = s.do(t, http.MethodGet, "/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", body["total"])

	rec, body = s.do(t, http.MethodPost, "/checkout/confirm", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s.svc.Wait()
	assert.Equal(t, float64(1), body["order_id"])
	assert.Equal(t, "ORD-0000000000AA", body["order_number"])
	assert.Equal(t, "7", body["total"])

	items, err := s.carts.GetCart(context.Background(), testUser)
	require.NoError(t, err)
	assert.Empty(t, items)

	rec, body = s.do(t, http.MethodGet, "/orders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusPending, body["status"])

	rec, _ = s.do(t, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/orders?cursor=not-base64!", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutConfirmFailureKeepsCart(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.carts.AddItem(context.Background(), testUser, "1", 2))
	s.orders.err = database.Persistence("create order", errors.New("connection refused"))

	rec, body := s.do(t, http.MethodPost, "/checkout/confirm", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, checkout.FailureMessage, body["error"])
	assert.Equal(t, "/checkout", body["redirect"])
	assert.NotContains(t, rec.Body.String(), "connection refused")

	items, err := s.carts.GetCart(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: "1", Quantity: 2}}, items)
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/favorites/toggle", `{"product_id": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["favorited"])

	rec, body = s.do(t, http.MethodGet, "/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"2"}, body["favorites"])

	rec, body = s.do(t, http.MethodPost, "/favorites/toggle", `{"product_id": "2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["favorited"])
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/products?category=beans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total"])

	rec, body = s.do(t, http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Espresso", body["name"])

	rec, _ = s.do(t, http.MethodGet, "/products/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
}

func TestInternalErrorsHideStorageDetails(t *testing.T) {
	s := newTestServer(t)
	leak := errors.New(`pq: relation "products" does not exist`)
	s.catalog.err = leak
	s.orders.listErr = leak

	tests := []struct {
		name    string
		path    string
		headers []string
	}{
		{"products", "/products", nil},
		{"my orders", "/orders", nil},
		{"admin orders", "/admin/orders", []string{"X-API-KEY", testAPIKey}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodGet, tt.path, "", tt.headers...)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, rec.Body.String(), "pq:")
			assert.NotContains(t, rec.Body.String(), "relation")
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.carts.AddItem(context.Background(), testUser, "1", 1))
	_, err := s.svc.PlaceOrder(context.Background(), testUser)
	require.NoError(t, err)
	s.svc.Wait()

	rec, _ := s.do(t, http.MethodGet, "/admin/orders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	key := []string{"X-API-KEY", testAPIKey}

	rec, body := s.do(t, http.MethodGet, "/admin/orders?status=pending", "", key...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total"])

	rec, _ = s.do(t, http.MethodGet, "/admin/orders?status=lost", "", key...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodPost, "/admin/orders/claim", "", key...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusProcessing, body["status"])

	rec, _ = s.do(t, http.MethodPost, "/admin/orders/claim", "", key...)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = s.do(t, http.MethodPost, "/admin/orders/1/status", `{"status": "shipped"}`, key...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusShipped, body["status"])

	rec, _ = s.do(t, http.MethodPost, "/admin/orders/1/status", `{"status": "pending"}`, key...)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/admin/orders/1/status", `{"status": "delivered", "version": 1}`, key...)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/admin/orders/42", "", key...)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = s.do(t, http.MethodPost, "/admin/products", `{"name": "Cold brew", "price": "4.75", "category": "drinks"}`, key...)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "4.75", body["price"])

	rec, _ = s.do(t, http.MethodPost, "/admin/products", `{"name": "", "price": "1"}`, key...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodPut, "/admin/products/2", `{"name": "Huila Decaf", "price": "17.25", "category": "beans"}`, key...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Huila Decaf", body["name"])
	assert.Equal(t, "17.25", body["price"])

	rec, _ = s.do(t, http.MethodPut, "/admin/products/2", `{"name": "Huila", "price": "-1"}`, key...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPut, "/admin/products/404", `{"name": "Ghost", "price": "1"}`, key...)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = s.do(t, http.MethodGet, "/products/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Huila Decaf", body["name"])

	rec, body = s.do(t, http.MethodPost, "/admin/categories/2/toggle", "", key...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["is_active"])

	rec, _ = s.do(t, http.MethodPost, "/admin/categories/9/toggle", "", key...)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	catRec := httptest.NewRecorder()
	s.handler.ServeHTTP(catRec, req)
	var active []models.Category
	require.NoError(t, json.Unmarshal(catRec.Body.Bytes(), &active))
	assert.Len(t, active, 2)

	req = httptest.NewRequest(http.MethodGet, "/admin/categories", nil)
	req.Header.Set("X-API-KEY", testAPIKey)
	catRec = httptest.NewRecorder()
	s.handler.ServeHTTP(catRec, req)
	var all []models.Category
	require.NoError(t, json.Unmarshal(catRec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec, _ = s.do(t, http.MethodDelete, "/admin/products/2", "", key...)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/admin/products/2", "", key...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
