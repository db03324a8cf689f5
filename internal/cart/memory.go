package cart

import (
	"context"
	"sync"

	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
)

// UserLookup returns database.ErrUserNotFound for a user that does not exist.
type UserLookup func(ctx context.Context, userID string) error

// MemoryStore keeps carts in process memory. It backs CART_BACKEND=memory for
// local runs. Like MongoStore it answers database.ErrUserNotFound for users it
// does not know; a user is known once registered or once the lookup confirms
// them.
type MemoryStore struct {
	mu     sync.Mutex
	carts  map[string][]models.CartItem
	lookup UserLookup
}

// NewMemoryStore knows only the users passed to Register.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]models.CartItem)}
}

// NewMemoryStoreWithLookup also accepts users confirmed by lookup, starting
// them with an empty cart.
func NewMemoryStoreWithLookup(lookup UserLookup) *MemoryStore {
	s := NewMemoryStore()
	s.lookup = lookup
	return s
}

// Register makes userID known with an empty cart.
func (s *MemoryStore) Register(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[userID]; !ok {
		s.carts[userID] = []models.CartItem{}
	}
}

func (s *MemoryStore) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	if err := s.known(ctx, userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.carts[userID]), nil
}

func (s *MemoryStore) AddItem(ctx context.Context, userID, productID string, delta int) error {
	return s.apply(ctx, userID, func(items []models.CartItem) []models.CartItem {
		return Add(items, productID, delta)
	})
}

func (s *MemoryStore) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) error {
	return s.apply(ctx, userID, func(items []models.CartItem) []models.CartItem {
		return Set(items, productID, quantity)
	})
}

func (s *MemoryStore) RemoveItem(ctx context.Context, userID, productID string) error {
	return s.apply(ctx, userID, func(items []models.CartItem) []models.CartItem {
		return Remove(items, productID)
	})
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	return s.apply(ctx, userID, func([]models.CartItem) []models.CartItem {
		return []models.CartItem{}
	})
}

// known runs the lookup outside the lock so a slow user store never blocks
// other carts.
func (s *MemoryStore) known(ctx context.Context, userID string) error {
	s.mu.Lock()
	_, ok := s.carts[userID]
	s.mu.Unlock()
	if ok {
		return nil
	}

	if s.lookup == nil {
		return database.ErrUserNotFound
	}
	if err := s.lookup(ctx, userID); err != nil {
		return err
	}
	s.Register(userID)
	return nil
}

func (s *MemoryStore) apply(ctx context.Context, userID string, fn func([]models.CartItem) []models.CartItem) error {
	if err := s.known(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = fn(s.carts[userID])
	return nil
}
