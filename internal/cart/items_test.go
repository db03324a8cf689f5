package cart

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/safar/coffee-shop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, q int) models.CartItem {
	return models.CartItem{ProductID: id, Quantity: q}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name  string
		start []models.CartItem
		id    string
		delta int
		want  []models.CartItem
	}{
		{"insert into empty", nil, "A", 2, []models.CartItem{item("A", 2)}},
		{"increment existing", []models.CartItem{item("A", 2)}, "A", 3, []models.CartItem{item("A", 5)}},
		{"decrement existing", []models.CartItem{item("A", 2)}, "A", -1, []models.CartItem{item("A", 1)}},
		{"decrement to zero removes", []models.CartItem{item("A", 2), item("B", 1)}, "A", -2, []models.CartItem{item("B", 1)}},
		{"decrement below zero removes", []models.CartItem{item("A", 1)}, "A", -5, []models.CartItem{}},
		{"negative on missing is no-op", []models.CartItem{item("B", 1)}, "A", -1, []models.CartItem{item("B", 1)}},
		{"zero on missing is no-op", []models.CartItem{item("B", 1)}, "A", 0, []models.CartItem{item("B", 1)}},
		{"keeps order", []models.CartItem{item("A", 1), item("B", 1)}, "C", 1, []models.CartItem{item("A", 1), item("B", 1), item("C", 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Add(tt.start, tt.id, tt.delta))
		})
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	start := []models.CartItem{item("A", 1), item("B", 1)}
	_ = Add(start, "A", 4)
	_ = Add(start, "A", -1)
	assert.Equal(t, []models.CartItem{item("A", 1), item("B", 1)}, start)
}

func TestSet(t *testing.T) {
	tests := []struct {
		name  string
		start []models.CartItem
		id    string
		qty   int
		want  []models.CartItem
	}{
		{"replace existing", []models.CartItem{item("A", 2)}, "A", 7, []models.CartItem{item("A", 7)}},
		{"zero removes", []models.CartItem{item("A", 2), item("B", 1)}, "A", 0, []models.CartItem{item("B", 1)}},
		{"negative removes", []models.CartItem{item("A", 2)}, "A", -3, []models.CartItem{}},
		{"missing is not inserted", []models.CartItem{item("B", 1)}, "A", 4, []models.CartItem{item("B", 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Set(tt.start, tt.id, tt.qty))
		})
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	start := []models.CartItem{item("A", 1), item("B", 2)}
	once := Remove(start, "A")
	twice := Remove(once, "A")
	assert.Equal(t, []models.CartItem{item("B", 2)}, once)
	assert.Equal(t, once, twice)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count(nil))
	assert.Equal(t, 5, Count([]models.CartItem{item("A", 2), item("B", 3)}))
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"3", 3, false},
		{" 12 ", 12, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			got, err := ParseQuantity(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Random sequences of add/set/remove never leave a non-positive quantity or
// a duplicated product id behind.
func TestRandomOperationsKeepCartWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(20261016))
	products := []string{"A", "B", "C", "D"}

	for run := 0; run < 200; run++ {
		var items []models.CartItem
		for step := 0; step < 50; step++ {
			id := products[rng.Intn(len(products))]
			n := rng.Intn(11) - 5
			switch rng.Intn(3) {
			case 0:
				items = Add(items, id, n)
			case 1:
				items = Set(items, id, n)
			case 2:
				items = Remove(items, id)
			}
			assertWellFormed(t, items)
		}
	}
}

func assertWellFormed(t *testing.T, items []models.CartItem) {
	t.Helper()
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			t.Fatalf("entry %q has quantity %d", it.ProductID, it.Quantity)
		}
		if seen[it.ProductID] {
			t.Fatalf("duplicate entry %q in %v", it.ProductID, items)
		}
		seen[it.ProductID] = true
	}
}
