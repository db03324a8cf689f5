// Package cart holds a customer's pre-order staging list of product ids and
// quantities. Entries are unique by product id and always have a positive
// quantity; prices are never stored here.
package cart

import (
	"errors"
	"strconv"
	"strings"

	"github.com/safar/coffee-shop/internal/models"
)

var ErrInvalidQuantity = errors.New("invalid quantity")

// Add applies a quantity delta. An existing entry is incremented and dropped
// if it falls to zero or below; a missing entry is inserted only for a
// positive delta.
func Add(items []models.CartItem, productID string, delta int) []models.CartItem {
	out := clone(items)
	for i := range out {
		if out[i].ProductID != productID {
			continue
		}
		out[i].Quantity += delta
		if out[i].Quantity <= 0 {
			return append(out[:i], out[i+1:]...)
		}
		return out
	}
	if delta > 0 {
		out = append(out, models.CartItem{ProductID: productID, Quantity: delta})
	}
	return out
}

// Set replaces the quantity of an existing entry. Zero or less removes it;
// setting a product that is not in the cart does nothing.
func Set(items []models.CartItem, productID string, quantity int) []models.CartItem {
	if quantity <= 0 {
		return Remove(items, productID)
	}
	out := clone(items)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = quantity
			break
		}
	}
	return out
}

func Remove(items []models.CartItem, productID string) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// Count is the number of units in the cart, shown on the header badge.
func Count(items []models.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// ParseQuantity accepts a base-10 integer that is zero or greater.
func ParseQuantity(raw string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q < 0 {
		return 0, ErrInvalidQuantity
	}
	return q, nil
}

func clone(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
