// Package checkout turns a customer's cart into an order. The cart and the
// profile live in MongoDB while the catalog and orders live in PostgreSQL, so
// the service composes narrow views of each store instead of a shared
// transaction: only the order write itself is atomic.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/safar/coffee-shop/internal/accounts"
	"github.com/safar/coffee-shop/internal/config"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/events"
	"github.com/safar/coffee-shop/internal/logging"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/safar/coffee-shop/internal/notify"
	"github.com/safar/coffee-shop/internal/store"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrStaleCart      = errors.New("cart contains unavailable products")
	ErrCheckoutFailed = errors.New("could not place order")
)

// FailureMessage is what the customer sees for any ErrCheckoutFailed.
const FailureMessage = "Could not place order. Please try again."

// Attempt states, logged per step and counted by final state.
const (
	StateStart     = "start"
	StateCartReady = "cart-loaded"
	StatePriced    = "priced"
	StateCommitted = "committed"
	StateNotified  = "notified"
	StateAborted   = "aborted"
	StateFailed    = "failed"
)

type CartStore interface {
	GetCart(ctx context.Context, userID string) ([]models.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, req store.CreateOrderRequest) (*models.Order, error)
}

type Profiles interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
}

type Recorder interface {
	CheckoutFinished(state string)
}

type Deps struct {
	Carts    CartStore
	Catalog  Catalog
	Orders   OrderWriter
	Profiles Profiles
	Mailer   notify.Sender
	Events   EventPublisher
	Metrics  Recorder
}

type Options struct {
	StaleCartPolicy string
	ClearTimeout    time.Duration
	NotifyTimeout   time.Duration
	OwnerEmail      string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		StaleCartPolicy: cfg.Checkout.StaleCartPolicy,
		ClearTimeout:    cfg.Checkout.ClearTimeout,
		NotifyTimeout:   cfg.Checkout.NotifyTimeout,
		OwnerEmail:      cfg.SMTP.OwnerEmail,
	}
}

type Service struct {
	deps Deps
	opts Options
	wg   sync.WaitGroup
}

func NewService(deps Deps, opts Options) *Service {
	if opts.StaleCartPolicy == "" {
		opts.StaleCartPolicy = config.StaleCartDrop
	}
	if opts.ClearTimeout <= 0 {
		opts.ClearTimeout = 5 * time.Second
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 30 * time.Second
	}
	return &Service{deps: deps, opts: opts}
}

// Line is one cart entry priced against the current catalog.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`

	productID int64
}

type Summary struct {
	Lines    []Line                   `json:"items"`
	Total    decimal.Decimal          `json:"total"`
	Count    int                      `json:"count"`
	Dropped  []string                 `json:"dropped,omitempty"`
	Shipping *models.ShippingSnapshot `json:"shipping,omitempty"`
}

func (s *Summary) lineItems() []store.LineItem {
	items := make([]store.LineItem, 0, len(s.Lines))
	for _, line := range s.Lines {
		items = append(items, store.LineItem{
			ProductID:   line.productID,
			ProductName: line.Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}
	return items
}

// Cart loads and prices the user's cart for display. Entries whose product
// no longer resolves are left out and listed in Dropped. A user without a
// cart has an empty one.
func (s *Service) Cart(ctx context.Context, userID string) (*Summary, error) {
	items, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, items)
}

// Preview is the checkout page: the priced cart plus the shipping details
// the order would be sent to.
func (s *Service) Preview(ctx context.Context, userID string) (*Summary, error) {
	items, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	summary, err := s.price(ctx, items)
	if err != nil {
		return nil, err
	}
	if err := s.applyStalePolicy(summary); err != nil {
		return nil, err
	}

	shipping, _, err := s.shipping(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.Shipping = &shipping

	return summary, nil
}

// PlaceOrder converts the cart into an order. On success the cart is cleared
// and notifications are dispatched in the background; neither can fail the
// call once the order is committed. On a write failure the cart is left
// untouched and the error wraps ErrCheckoutFailed.
func (s *Service) PlaceOrder(ctx context.Context, userID string) (*models.Order, error) {
	start := time.Now()
	s.step(userID, 0, StateStart, start)

	items, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, s.fail(userID, start, err)
	}
	if len(items) == 0 {
		s.finish(userID, 0, StateAborted, start, ErrEmptyCart)
		return nil, ErrEmptyCart
	}
	s.step(userID, 0, StateCartReady, start)

	summary, err := s.price(ctx, items)
	if err != nil {
		return nil, s.fail(userID, start, err)
	}
	if err := s.applyStalePolicy(summary); err != nil {
		s.finish(userID, 0, StateAborted, start, err)
		return nil, err
	}
	s.step(userID, 0, StatePriced, start)

	shipping, user, err := s.shipping(ctx, userID)
	if err != nil {
		return nil, s.fail(userID, start, err)
	}

	order, err := s.deps.Orders.CreateOrder(ctx, store.CreateOrderRequest{
		UserID:   userID,
		Shipping: shipping,
		Items:    summary.lineItems(),
	})
	if err != nil {
		return nil, s.fail(userID, start, err)
	}
	s.finish(userID, order.ID, StateCommitted, start, nil)

	s.clearCart(ctx, userID, order.ID)
	s.dispatch(ctx, order, user)

	return order, nil
}

// Wait blocks until every background notification has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) loadCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := s.deps.Carts.GetCart(ctx, userID)
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return items, nil
}

func (s *Service) price(ctx context.Context, items []models.CartItem) (*Summary, error) {
	summary := &Summary{Lines: []Line{}, Total: decimal.Zero}

	for _, item := range items {
		id, err := strconv.ParseInt(item.ProductID, 10, 64)
		if err != nil {
			summary.Dropped = append(summary.Dropped, item.ProductID)
			continue
		}

		product, err := s.deps.Catalog.GetProduct(ctx, id)
		if errors.Is(err, database.ErrProductNotFound) {
			summary.Dropped = append(summary.Dropped, item.ProductID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("price cart: %w", err)
		}

		line := Line{
			ProductID: item.ProductID,
			Name:      product.Name,
			Brand:     product.Brand,
			ImageURL:  product.ImageURL,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			LineTotal: product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			productID: product.ID,
		}
		summary.Lines = append(summary.Lines, line)
		summary.Total = summary.Total.Add(line.LineTotal)
		summary.Count += item.Quantity
	}

	return summary, nil
}

func (s *Service) applyStalePolicy(summary *Summary) error {
	if len(summary.Dropped) > 0 && s.opts.StaleCartPolicy == config.StaleCartReject {
		return fmt.Errorf("%w: %v", ErrStaleCart, summary.Dropped)
	}
	return nil
}

// shipping snapshots the current profile. A user without a profile document
// ships to an empty address.
func (s *Service) shipping(ctx context.Context, userID string) (models.ShippingSnapshot, *models.User, error) {
	if s.deps.Profiles == nil {
		return models.ShippingSnapshot{}, nil, nil
	}

	user, err := s.deps.Profiles.GetUser(ctx, userID)
	if errors.Is(err, database.ErrUserNotFound) {
		return models.ShippingSnapshot{}, nil, nil
	}
	if err != nil {
		return models.ShippingSnapshot{}, nil, fmt.Errorf("load profile: %w", err)
	}
	return accounts.Shipping(user), user, nil
}

// clearCart runs on a context detached from the request so a client that
// disconnects right after the commit still gets an empty cart.
func (s *Service) clearCart(ctx context.Context, userID string, orderID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ClearTimeout)
	defer cancel()

	if err := s.deps.Carts.Clear(ctx, userID); err != nil {
		logging.Err(logging.Fields{
			Component: "checkout",
			UserID:    userID,
			OrderID:   orderID,
			Step:      "clear-cart",
			Status:    "error",
			Message:   "order placed but cart was not cleared",
		}, err)
	}
}

func (s *Service) dispatch(ctx context.Context, order *models.Order, user *models.User) {
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, s.opts.NotifyTimeout)
		defer cancel()

		start := time.Now()
		s.notify(ctx, order, user)
		s.step(order.UserID, order.ID, StateNotified, start)
	}()
}

func (s *Service) notify(ctx context.Context, order *models.Order, user *models.User) {
	customerEmail := ""
	if user != nil {
		customerEmail = user.Email
	}

	var messages []notify.Message
	if s.opts.OwnerEmail != "" {
		msg, err := notify.OwnerOrderEmail(s.opts.OwnerEmail, customerEmail, order)
		s.collect(&messages, msg, err, order)
	}
	if customerEmail != "" {
		msg, err := notify.CustomerOrderEmail(customerEmail, order)
		s.collect(&messages, msg, err, order)
	}

	if s.deps.Mailer != nil {
		for _, msg := range messages {
			err := s.deps.Mailer.Send(ctx, msg)
			if errors.Is(err, notify.ErrDisabled) {
				s.notifySkipped(order, "email", err)
				break
			}
			if err != nil {
				s.notifyFailed(order, "email", err)
			}
		}
	}

	if s.deps.Events != nil {
		err := s.deps.Events.PublishOrderPlaced(ctx, order)
		switch {
		case errors.Is(err, events.ErrDisabled):
			s.notifySkipped(order, "event", err)
		case err != nil:
			s.notifyFailed(order, "event", err)
		}
	}
}

func (s *Service) collect(messages *[]notify.Message, msg notify.Message, err error, order *models.Order) {
	if err != nil {
		s.notifyFailed(order, "render", err)
		return
	}
	*messages = append(*messages, msg)
}

func (s *Service) notifyFailed(order *models.Order, step string, err error) {
	logging.Err(logging.Fields{
		Component: "notify",
		UserID:    order.UserID,
		OrderID:   order.ID,
		Step:      step,
		Status:    "error",
	}, err)
}

// notifySkipped records a channel that is switched off by configuration.
func (s *Service) notifySkipped(order *models.Order, step string, err error) {
	logging.Log(logging.Fields{
		Component: "notify",
		UserID:    order.UserID,
		OrderID:   order.ID,
		Step:      step,
		Status:    "skipped",
		Message:   err.Error(),
	})
}

func (s *Service) fail(userID string, start time.Time, err error) error {
	s.finish(userID, 0, StateFailed, start, err)
	return fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
}

func (s *Service) step(userID string, orderID int64, state string, start time.Time) {
	logging.Log(logging.Fields{
		Component:  "checkout",
		UserID:     userID,
		OrderID:    orderID,
		Step:       state,
		Status:     "ok",
		DurationMS: time.Since(start).Milliseconds(),
	})
}

func (s *Service) finish(userID string, orderID int64, state string, start time.Time, err error) {
	fields := logging.Fields{
		Component:  "checkout",
		UserID:     userID,
		OrderID:    orderID,
		Step:       state,
		Status:     "ok",
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields.Status = "error"
	}
	logging.Err(fields, err)

	if s.deps.Metrics != nil {
		s.deps.Metrics.CheckoutFinished(state)
	}
}
